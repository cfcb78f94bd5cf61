package proximity

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/metrics"
)

// Resolver tries the primary query and recovers to the fallback on any error.
// Callers never see the primary failure.
type Resolver struct {
	primary  Query
	fallback Query
}

// NewResolver creates a Resolver over the two query paths.
func NewResolver(primary, fallback Query) *Resolver {
	return &Resolver{primary: primary, fallback: fallback}
}

// Nearby implements Query.
func (r *Resolver) Nearby(ctx context.Context, req Request) ([]Candidate, error) {
	out, err := r.primary.Nearby(ctx, req)
	if err == nil {
		return out, nil
	}

	zap.L().Warn("proximity: primary query failed, using fallback",
		zap.Error(err),
		zap.String("vertical", req.Vertical),
	)
	metrics.ProximityFallbacks.Inc()
	return r.fallback.Nearby(ctx, req)
}
