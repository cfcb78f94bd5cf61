package proximity

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/db"
	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/metrics"
)

const boxSQL = `
	SELECT vendor_id, latitude, longitude
	FROM vendor_location_cache
	WHERE latitude BETWEEN $1 AND $2
	  AND longitude BETWEEN $3 AND $4
	  AND ($5::text = '' OR vertical = $5)`

// FallbackQuery scans the location cache inside a padded bounding box and
// re-scores every point with geo.DistanceMiles. It needs no spatial index.
type FallbackQuery struct {
	pool db.Pool
}

// NewFallbackQuery creates a FallbackQuery.
func NewFallbackQuery(pool db.Pool) *FallbackQuery {
	return &FallbackQuery{pool: pool}
}

// Nearby implements Query. A failed box query yields no candidates and a nil
// error: the last line of degradation is "no vendors found", not a failure.
func (q *FallbackQuery) Nearby(ctx context.Context, req Request) ([]Candidate, error) {
	box := geo.PaddedBounds(req.Origin, req.RadiusMiles)
	log := zap.L().With(
		zap.Float64("lat", req.Origin.Latitude),
		zap.Float64("lng", req.Origin.Longitude),
		zap.Float64("radius_miles", req.RadiusMiles),
	)

	points, err := q.fetch(ctx, box.Min(1), box.Max(1), box.Min(0), box.Max(0), req.Vertical)
	if err != nil {
		metrics.ProximityQueries.WithLabelValues(metrics.PathFallback, metrics.OutcomeError).Inc()
		log.Warn("proximity: bounding box query failed, returning no vendors", zap.Error(err))
		return []Candidate{}, nil
	}

	out := nearest(req.Origin, req.RadiusMiles, points)
	metrics.ProximityQueries.WithLabelValues(metrics.PathFallback, metrics.Outcome(len(out), nil)).Inc()
	log.Debug("proximity: fallback query", zap.Int("points", len(points)), zap.Int("candidates", len(out)))
	return out, nil
}

func (q *FallbackQuery) fetch(ctx context.Context, minLat, maxLat, minLng, maxLng float64, vertical string) ([]cachedPoint, error) {
	rows, err := q.pool.Query(ctx, boxSQL, minLat, maxLat, minLng, maxLng, vertical)
	if err != nil {
		return nil, err
	}
	return scanPoints(rows)
}
