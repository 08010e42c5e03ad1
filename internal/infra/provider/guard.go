package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earnings-radar/internal/config"
	"earnings-radar/internal/resilience/circuitbreaker"
	"earnings-radar/internal/usecase/resolve"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Guarded wraps a provider with an optional request budget and circuit breaker.
// A guard never waits: an exhausted budget or open circuit skips the provider
// so the chain can move on to the next one.
type Guarded[T any] struct {
	inner   resolve.Provider[T]
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
}

// Guard applies the configured guards to p. With no RPM budget for p and
// breakers disabled, p is returned unchanged.
func Guard[T any](p resolve.Provider[T], cfg config.Providers) resolve.Provider[T] {
	g := &Guarded[T]{inner: p}

	if rpm := cfg.RPM[p.Name()]; rpm > 0 {
		// burst of one keeps the budget evenly spread across the minute
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}
	if cfg.BreakerEnabled {
		bc := circuitbreaker.ProviderConfig(p.Name())
		bc.IsSuccessful = countsAsHealthy
		g.breaker = circuitbreaker.New(bc)
	}

	if g.limiter == nil && g.breaker == nil {
		return p
	}
	return g
}

// countsAsHealthy keeps configuration and caller-side errors from tripping a breaker.
func countsAsHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, resolve.ErrMissingCredential) ||
		errors.Is(err, context.Canceled)
}

// Name returns the wrapped provider's name.
func (g *Guarded[T]) Name() string { return g.inner.Name() }

// Resolve calls the wrapped provider if the guards allow it.
func (g *Guarded[T]) Resolve(ctx context.Context, ticker string) (T, error) {
	var zero T

	if g.limiter != nil && !g.limiter.Allow() {
		return zero, fmt.Errorf("%w: %s request budget exhausted", resolve.ErrProviderSkipped, g.Name())
	}

	if g.breaker == nil {
		return g.inner.Resolve(ctx, ticker)
	}

	v, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Resolve(ctx, ticker)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, fmt.Errorf("%w: %s circuit %v", resolve.ErrProviderSkipped, g.Name(), err)
	}
	if err != nil {
		return zero, err
	}
	value, _ := v.(T)
	return value, nil
}
