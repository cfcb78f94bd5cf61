package insights

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/config"
	"github.com/sells-group/vendor-geo/internal/metrics"
	"github.com/sells-group/vendor-geo/internal/postal"
)

// Engine runs the tiered insights pipeline.
type Engine struct {
	store   Store
	postal  postal.Directory
	cfg     config.InsightsConfig
	nowFunc func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(store Store, dir postal.Directory, cfg config.InsightsConfig) *Engine {
	return &Engine{store: store, postal: dir, cfg: cfg, nowFunc: time.Now}
}

// Run resolves the vendor's tier and computes every metric it is entitled to.
// A vendor without entitlement gets a blocked report, not an error.
func (e *Engine) Run(ctx context.Context, req Request) (*Report, error) {
	log := zap.L().With(zap.String("vendor_id", req.VendorID), zap.String("vertical", req.Vertical))

	sub, err := e.store.VendorSubscription(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	tier := TierFromSubscription(sub)
	metrics.InsightsRequests.WithLabelValues(string(tier)).Inc()

	report := &Report{VendorID: req.VendorID, Tier: tier}
	if tier == TierNone {
		report.Blocked = true
		log.Debug("insights: blocked", zap.String("subscription", sub))
		return report, nil
	}

	days := e.lookback(tier, req.LookbackDays)
	report.LookbackDays = days
	window := NewWindow(e.nowFunc().UTC(), days)

	items, err := e.store.OrderItems(ctx, req.VendorID, window.PriorFrom, window.To, ExcludedStatuses)
	if err != nil {
		return nil, eris.Wrap(err, "insights: order items")
	}
	stats := BuildStats(items, window)
	basic := BuildBasic(stats)
	if !tier.Includes(TierPro) {
		report.Metrics = basic
		return e.done(log, report, len(items)), nil
	}

	schedule, err := e.store.VendorScheduleMarkets(ctx, req.VendorID)
	if err != nil {
		return nil, eris.Wrap(err, "insights: schedule markets")
	}
	history, err := e.store.VendorHistoryMarkets(ctx, req.VendorID, ExcludedStatuses)
	if err != nil {
		return nil, eris.Wrap(err, "insights: history markets")
	}
	candidates, err := e.store.CandidateMarkets(ctx, req.Vertical)
	if err != nil {
		return nil, eris.Wrap(err, "insights: candidate markets")
	}
	pro := BuildPro(basic, stats, append(schedule, history...), candidates, ProOptions{
		RadiusMiles: e.cfg.MissingMarketsMiles,
		Limit:       e.cfg.MissingMarketsLimit,
	})
	if !tier.Includes(TierBoss) {
		report.Metrics = pro
		return e.done(log, report, len(items)), nil
	}

	buyers, err := e.store.BuyerLocations(ctx, req.Vertical)
	if err != nil {
		return nil, eris.Wrap(err, "insights: buyer locations")
	}
	// Coverage gaps use a fixed window regardless of the requested lookback.
	since := window.To.AddDate(0, 0, -e.cfg.CoverageGapDays)
	volumes, err := e.store.SearchVolumeByPostalCode(ctx, req.Vertical, since, e.cfg.CoverageGapLimit)
	if err != nil {
		return nil, eris.Wrap(err, "insights: search volume")
	}
	codes := make([]string, len(volumes))
	for i, v := range volumes {
		codes[i] = v.PostalCode
	}
	places, err := e.postal.Lookup(ctx, codes)
	if err != nil {
		return nil, eris.Wrap(err, "insights: postal lookup")
	}

	report.Metrics = BuildBoss(pro, stats, buyers, volumes, places)
	return e.done(log, report, len(items)), nil
}

func (e *Engine) done(log *zap.Logger, r *Report, items int) *Report {
	log.Info("insights: report built",
		zap.String("tier", string(r.Tier)),
		zap.Int("lookback_days", r.LookbackDays),
		zap.Int("order_items", items),
	)
	return r
}

// lookback defaults non-positive requests and clamps to the tier's cap.
func (e *Engine) lookback(tier Tier, requested int) int {
	days := requested
	if days <= 0 {
		days = e.cfg.DefaultLookbackDays
	}
	limit := e.cfg.ProMaxLookbackDays
	if tier == TierBasic {
		limit = e.cfg.BasicMaxLookbackDays
	}
	if limit > 0 && days > limit {
		days = limit
	}
	return days
}
