// Package circuitbreaker stops calling an upstream provider, the HTTP event
// store or the event database once it keeps failing, and probes it again
// after a cool-down. It is a thin layer over github.com/sony/gobreaker that
// adds ratio-based tripping, logging and Prometheus state metrics.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"earnings-radar/internal/observability/metrics"
)

// Config describes one breaker.
type Config struct {
	// Name labels logs and the circuit_breaker_state metric.
	Name string

	// MaxRequests is how many probes pass while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration

	// Timeout is the open-state cool-down.
	Timeout time.Duration

	// The breaker opens once at least MinRequests calls were counted and
	// the failure ratio reaches FailureThreshold.
	FailureThreshold float64
	MinRequests      uint32

	// IsSuccessful classifies errors that should not count as failures.
	// Nil counts every error.
	IsSuccessful func(err error) bool
}

// ProviderConfig is used for upstream data providers. Free-tier rate
// windows reset every minute, so the breaker re-probes after 30s with a
// single request.
func ProviderConfig(provider string) Config {
	return Config{
		Name:             "provider-" + provider,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// StoreConfig is used for the HTTP document store.
func StoreConfig() Config {
	return Config{
		Name:             "event-store",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// CircuitBreaker is a named gobreaker breaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// New builds a breaker from cfg and publishes its initial closed state.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordBreakerState(name, to.String())
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn unless the circuit is open, in which case it returns
// gobreaker.ErrOpenState (or ErrTooManyRequests while half-open) without
// calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// Do is Execute for calls without a result.
func (cb *CircuitBreaker) Do(fn func() error) error {
	_, err := cb.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// IsOpen reports whether calls are currently rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
