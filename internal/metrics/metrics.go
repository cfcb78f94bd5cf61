// Package metrics registers the Prometheus collectors for discovery and insights.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"
)

// Proximity query paths.
const (
	PathPrimary  = "primary"
	PathFallback = "fallback"
)

// Query outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	ProximityQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proximity_queries_total",
			Help: "Proximity queries by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	ProximityFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proximity_fallback_total",
			Help: "Proximity requests served by the bounding-box fallback after a primary failure",
		},
	)

	DiscoveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_duration_seconds",
			Help:    "Duration of discovery searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	InsightsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_requests_total",
			Help: "Insights requests by resolved vendor tier",
		},
		[]string{"tier"},
	)
)

// Outcome classifies a query result for the outcome label.
func Outcome(n int, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case n == 0:
		return OutcomeEmpty
	default:
		return OutcomeHit
	}
}

// WatchBreaker exports a circuit breaker's state (0 closed, 1 open, 2 half-open)
// as the circuit_breaker_state gauge, sampled at scrape time. Watching the same
// breaker name twice is a no-op.
func WatchBreaker(reg prometheus.Registerer, name string, state func() float64) error {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "circuit_breaker_state",
		Help:        "Circuit breaker state: 0 closed, 1 open, 2 half-open",
		ConstLabels: prometheus.Labels{"breaker": name},
	}, state)

	if err := reg.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return eris.Wrapf(err, "metrics: register breaker %s", name)
	}
	return nil
}
