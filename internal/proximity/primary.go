package proximity

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/db"
	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/metrics"
	"github.com/sells-group/vendor-geo/internal/resilience"
)

const radiusSQL = `
	SELECT vendor_id, latitude, longitude
	FROM vendor_location_cache
	WHERE ST_DWithin(location::geography, ST_GeomFromEWKB($1)::geography, $2)
	  AND ($3::text = '' OR vertical = $3)`

// PrimaryQuery runs the indexed PostGIS radius query. Distances are annotated with
// geo.DistanceMiles, the same function the fallback uses.
type PrimaryQuery struct {
	pool    db.Pool
	breaker *resilience.CircuitBreaker
}

// NewPrimaryQuery creates a PrimaryQuery. Calls go through breaker so a broken
// spatial index fails fast instead of timing out on every request.
func NewPrimaryQuery(pool db.Pool, breaker *resilience.CircuitBreaker) *PrimaryQuery {
	return &PrimaryQuery{pool: pool, breaker: breaker}
}

// Nearby implements Query.
func (q *PrimaryQuery) Nearby(ctx context.Context, req Request) ([]Candidate, error) {
	origin, err := geo.EWKBPoint(req.Origin)
	if err != nil {
		return nil, eris.Wrap(err, "proximity: primary origin")
	}

	points, err := resilience.ExecuteVal(ctx, q.breaker, func(ctx context.Context) ([]cachedPoint, error) {
		rows, err := q.pool.Query(ctx, radiusSQL, origin, geo.MilesToMeters(req.RadiusMiles), req.Vertical)
		if err != nil {
			return nil, eris.Wrap(err, "proximity: primary radius query")
		}
		return scanPoints(rows)
	})
	if err != nil {
		metrics.ProximityQueries.WithLabelValues(metrics.PathPrimary, metrics.OutcomeError).Inc()
		return nil, err
	}

	out := nearest(req.Origin, req.RadiusMiles, points)
	metrics.ProximityQueries.WithLabelValues(metrics.PathPrimary, metrics.Outcome(len(out), nil)).Inc()
	zap.L().Debug("proximity: primary query",
		zap.Int("points", len(points)),
		zap.Int("candidates", len(out)),
		zap.Float64("radius_miles", req.RadiusMiles),
	)
	return out, nil
}
