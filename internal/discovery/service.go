package discovery

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/config"
	"github.com/sells-group/vendor-geo/internal/enrich"
	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/metrics"
	"github.com/sells-group/vendor-geo/internal/proximity"
)

// Enricher turns proximity candidates into enriched vendors.
type Enricher interface {
	Enrich(ctx context.Context, origin geo.Point, candidates []proximity.Candidate) ([]enrich.Vendor, error)
}

// Service runs discovery searches.
type Service struct {
	nearby     proximity.Query
	enricher   Enricher
	cfg        config.DiscoveryConfig
	priorities Priorities
}

// NewService creates a Service.
func NewService(nearby proximity.Query, enricher Enricher, cfg config.DiscoveryConfig) *Service {
	return &Service{
		nearby:     nearby,
		enricher:   enricher,
		cfg:        cfg,
		priorities: NewPriorities(cfg.TierPriority),
	}
}

// Search returns one page of vendors near q.Origin. Zero matches is a normal,
// empty result; enrichment failures are returned as errors.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.DiscoveryDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	q, err := s.normalize(q)
	if err != nil {
		outcome = "invalid"
		return nil, err
	}

	log := zap.L().With(
		zap.String("request_id", uuid.NewString()),
		zap.String("vertical", q.Vertical),
		zap.Float64("radius_miles", q.RadiusMiles),
	)

	candidates, err := s.nearby.Nearby(ctx, proximity.Request{
		Origin:      q.Origin,
		RadiusMiles: q.RadiusMiles,
		Vertical:    q.Vertical,
	})
	if err != nil {
		return nil, eris.Wrap(err, "discovery: proximity")
	}
	if len(candidates) == 0 {
		outcome = "empty"
		log.Debug("discovery: no candidates")
		return &Result{Vendors: []enrich.Vendor{}}, nil
	}

	vendors, err := s.enricher.Enrich(ctx, q.Origin, candidates)
	if err != nil {
		log.Error("discovery: enrichment failed", zap.Error(err))
		return nil, eris.Wrap(err, "discovery: enrich")
	}

	vendors = Filter(vendors, q.Filters)
	Sort(vendors, q.Sort, s.priorities.For(q.Vertical))
	page, total, more := Paginate(vendors, q.Offset, q.Limit)

	outcome = "ok"
	log.Info("discovery: search complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("total", total),
		zap.Int("returned", len(page)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{Vendors: page, Total: total, HasMore: more}, nil
}

// normalize validates q and fills defaults. Oversized radius and limit are
// clamped to the configured maxima.
func (s *Service) normalize(q Query) (Query, error) {
	if err := q.Origin.Validate(); err != nil {
		return q, eris.Wrapf(ErrInvalidInput, "%v", err)
	}
	if math.IsNaN(q.RadiusMiles) || math.IsInf(q.RadiusMiles, 0) {
		return q, eris.Wrapf(ErrInvalidInput, "radius %v must be a finite number", q.RadiusMiles)
	}
	if q.RadiusMiles < 0 {
		return q, eris.Wrapf(ErrInvalidInput, "radius %v must not be negative", q.RadiusMiles)
	}
	if q.Offset < 0 {
		return q, eris.Wrapf(ErrInvalidInput, "offset %d must not be negative", q.Offset)
	}
	if q.Sort == "" {
		q.Sort = SortRating
	}
	if !q.Sort.Valid() {
		return q, eris.Wrapf(ErrInvalidInput, "unknown sort %q", q.Sort)
	}

	if q.RadiusMiles == 0 {
		q.RadiusMiles = s.cfg.DefaultRadiusMiles
	}
	if s.cfg.MaxRadiusMiles > 0 && q.RadiusMiles > s.cfg.MaxRadiusMiles {
		q.RadiusMiles = s.cfg.MaxRadiusMiles
	}
	if q.Limit <= 0 {
		q.Limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && q.Limit > s.cfg.MaxLimit {
		q.Limit = s.cfg.MaxLimit
	}
	return q, nil
}
