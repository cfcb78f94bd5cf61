// Package resilience guards calls to the marketplace store: a circuit breaker that
// lets the spatial index fail fast while it is unhealthy, and bounded retries for
// transient Postgres errors.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed is the normal operating state.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects calls until the reset timeout elapses.
	CircuitOpen
	// CircuitHalfOpen lets probe calls through to test recovery.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when a call is rejected because the circuit is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// CircuitBreakerConfig controls circuit breaker behavior.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before allowing a probe.
	ResetTimeout time.Duration

	// HalfOpenMaxProbes bounds the probes in flight while half-open, and is the
	// number of successful probes that close the circuit.
	HalfOpenMaxProbes int

	// ShouldTrip decides whether an error counts as a failure. Nil counts every
	// non-nil error except context cancellation.
	ShouldTrip func(err error) bool
}

// DefaultCircuitBreakerConfig returns the defaults used when config values are unset.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold:  5,
		ResetTimeout:      30 * time.Second,
		HalfOpenMaxProbes: 1,
	}
}

// CircuitBreaker implements the circuit breaker pattern for one named dependency.
type CircuitBreaker struct {
	name string
	cfg  CircuitBreakerConfig

	mu                  sync.Mutex
	state               CircuitState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenSuccesses   int
	halfOpenInFlight    int

	nowFunc func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker named for logging.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if cfg.HalfOpenMaxProbes <= 0 {
		cfg.HalfOpenMaxProbes = def.HalfOpenMaxProbes
	}
	return &CircuitBreaker{
		name:    name,
		cfg:     cfg,
		state:   CircuitClosed,
		nowFunc: time.Now,
	}
}

// ExecuteVal runs fn through the breaker and returns its value. It returns
// ErrCircuitOpen without calling fn while the circuit is open.
func ExecuteVal[T any](ctx context.Context, cb *CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	probe, err := cb.allow()
	if err != nil {
		return zero, err
	}

	val, err := fn(ctx)
	cb.record(err, probe)
	if err != nil {
		return zero, err
	}
	return val, nil
}

// State returns the current circuit state, reporting half-open once an open
// circuit's reset timeout has elapsed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.nowFunc().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

// allow admits a call. While half-open only HalfOpenMaxProbes calls may be in
// flight; probe reports whether the admitted call holds one of those slots.
func (cb *CircuitBreaker) allow() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen {
		if cb.nowFunc().Sub(cb.openedAt) < cb.cfg.ResetTimeout {
			return false, eris.Wrapf(ErrCircuitOpen, "resilience: %s", cb.name)
		}
		cb.transition(CircuitHalfOpen)
	}
	if cb.state != CircuitHalfOpen {
		return false, nil
	}
	if cb.halfOpenInFlight >= cb.cfg.HalfOpenMaxProbes {
		return false, eris.Wrapf(ErrCircuitOpen, "resilience: %s: probe in flight", cb.name)
	}
	cb.halfOpenInFlight++
	return true, nil
}

func (cb *CircuitBreaker) record(err error, probe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe && cb.state == CircuitHalfOpen && cb.halfOpenInFlight > 0 {
		cb.halfOpenInFlight--
	}

	if !cb.trips(err) {
		switch cb.state {
		case CircuitHalfOpen:
			cb.halfOpenSuccesses++
			if cb.halfOpenSuccesses >= cb.cfg.HalfOpenMaxProbes {
				cb.transition(CircuitClosed)
			}
		case CircuitClosed:
			cb.consecutiveFailures = 0
		}
		return
	}

	cb.consecutiveFailures++
	switch cb.state {
	case CircuitClosed:
		if cb.consecutiveFailures >= cb.cfg.FailureThreshold {
			cb.openedAt = cb.nowFunc()
			cb.transition(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.openedAt = cb.nowFunc()
		cb.transition(CircuitOpen)
	}
}

func (cb *CircuitBreaker) trips(err error) bool {
	if err == nil {
		return false
	}
	if cb.cfg.ShouldTrip != nil {
		return cb.cfg.ShouldTrip(err)
	}
	return !eris.Is(err, context.Canceled)
}

func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to
	cb.halfOpenSuccesses = 0
	cb.halfOpenInFlight = 0
	if to == CircuitClosed {
		cb.consecutiveFailures = 0
	}
	zap.L().Info("resilience: circuit state change",
		zap.String("breaker", cb.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
}
