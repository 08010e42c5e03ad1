// Package resolve implements the ordered fallback chain used to obtain a
// single logical fact (an earnings date, a batch of news) from a list of
// independently unreliable providers.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/observability/metrics"
	"earnings-radar/internal/observability/tracing"
)

// Provider fetches one kind of fact for a ticker.
//
// A provider that has nothing to say returns the zero value and a nil error.
// Returned errors never abort the chain; they only mark the attempt as
// failed (or misconfigured for ErrMissingCredential).
type Provider[T any] interface {
	Name() string
	Resolve(ctx context.Context, ticker string) (T, error)
}

// EarningsProvider resolves an upcoming earnings report.
type EarningsProvider = Provider[*entity.EarningsFact]

// NewsProvider resolves recent news items.
type NewsProvider = Provider[[]entity.NewsItem]

// Attempt result values.
const (
	ResultUsed          = "used"
	ResultEmpty         = "empty"
	ResultFailed        = "failed"
	ResultMisconfigured = "misconfigured"
	ResultSkipped       = "skipped"
)

// Attempt records one provider call.
type Attempt struct {
	Provider string
	Result   string
	Duration time.Duration
	Err      error
}

// Outcome is the result of a chain resolution. Not finding anything is a
// normal outcome, not an error.
type Outcome[T any] struct {
	Value    T
	Found    bool
	Source   string
	Attempts []Attempt
}

// Chain queries providers in declared order and returns the first usable value.
type Chain[T any] struct {
	name      string
	providers []Provider[T]
	usable    func(T) bool
	timeout   time.Duration
	logger    *slog.Logger
}

// Option customises a Chain.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout bounds each provider call. Zero disables the per-call bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the chain logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewChain builds a chain named name (used in logs, metrics and spans).
func NewChain[T any](name string, usable func(T) bool, providers []Provider[T], opts ...Option) *Chain[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Chain[T]{
		name:      name,
		providers: providers,
		usable:    usable,
		timeout:   o.timeout,
		logger:    o.logger.With(slog.String("chain", name)),
	}
}

// NewEarningsChain builds the earnings chain. A fact is usable when it carries a date.
func NewEarningsChain(providers []EarningsProvider, opts ...Option) *Chain[*entity.EarningsFact] {
	return NewChain("earnings", func(f *entity.EarningsFact) bool { return f.HasDate() }, providers, opts...)
}

// NewNewsChain builds the news chain. A batch is usable when it is non-empty.
func NewNewsChain(providers []NewsProvider, opts ...Option) *Chain[[]entity.NewsItem] {
	return NewChain("news", func(items []entity.NewsItem) bool { return len(items) > 0 }, providers, opts...)
}

// Providers returns the provider names in resolution order.
func (c *Chain[T]) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Resolve normalizes ticker and walks the providers until one yields a
// usable value. The only error returned is the context's, when the caller
// cancels mid-chain.
func (c *Chain[T]) Resolve(ctx context.Context, ticker string) (Outcome[T], error) {
	ticker = entity.NormalizeTicker(ticker)
	out := Outcome[T]{Attempts: make([]Attempt, 0, len(c.providers))}

	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			metrics.RecordResolutionCanceled(c.name)
			return out, err
		}

		value, attempt := c.try(ctx, p, ticker)
		out.Attempts = append(out.Attempts, attempt)

		if attempt.Result == ResultUsed {
			out.Value = value
			out.Found = true
			out.Source = p.Name()
			metrics.RecordResolution(c.name, true)
			c.logger.Debug("resolved",
				slog.String("ticker", ticker),
				slog.String("source", out.Source),
				slog.Int("attempts", len(out.Attempts)))
			return out, nil
		}

		// A provider failing because the caller went away is not a provider fault.
		if err := ctx.Err(); err != nil {
			metrics.RecordResolutionCanceled(c.name)
			return out, err
		}
	}

	metrics.RecordResolution(c.name, false)
	c.logger.Debug("no provider yielded a result",
		slog.String("ticker", ticker),
		slog.Int("attempts", len(out.Attempts)))
	return out, nil
}

// try runs one provider behind a panic and error boundary.
func (c *Chain[T]) try(ctx context.Context, p Provider[T], ticker string) (T, Attempt) {
	name := p.Name()
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	callCtx, span := tracing.StartProviderSpan(callCtx, c.name, name, ticker)

	start := time.Now()
	value, err := safeCall(callCtx, p, ticker)
	attempt := Attempt{Provider: name, Duration: time.Since(start), Err: err}

	var zero T
	log := c.logger.With(slog.String("provider", name), slog.String("ticker", ticker))

	switch {
	case errors.Is(err, ErrMissingCredential):
		attempt.Result = ResultMisconfigured
		log.Error("provider misconfigured", slog.Any("error", err))
	case errors.Is(err, ErrProviderSkipped):
		attempt.Result = ResultSkipped
		log.Debug("provider skipped", slog.Any("error", err))
	case err != nil:
		attempt.Result = ResultFailed
		log.Debug("provider failed", slog.Any("error", err))
	case !c.usable(value):
		attempt.Result = ResultEmpty
		log.Debug("provider returned nothing usable")
	default:
		attempt.Result = ResultUsed
	}

	metrics.RecordProviderAttempt(c.name, name, attempt.Result, attempt.Duration)
	tracing.EndProviderSpan(span, attempt.Result, err)

	if attempt.Result != ResultUsed {
		return zero, attempt
	}
	return value, attempt
}

func safeCall[T any](ctx context.Context, p Provider[T], ticker string) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = fmt.Errorf("%w: %s: %v", ErrProviderPanic, p.Name(), r)
		}
	}()
	return p.Resolve(ctx, ticker)
}
