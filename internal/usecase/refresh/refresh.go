// Package refresh re-resolves earnings dates for symbols whose stored
// report date has already passed, so the collection rolls forward to the
// next quarter without manual input.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/observability/metrics"
	"earnings-radar/internal/usecase/event"
	"earnings-radar/internal/usecase/resolve"
)

// Per-symbol results, also used as metric labels.
const (
	ResultAdded     = "added"
	ResultUnchanged = "unchanged"
	ResultNotFound  = "not_found"
	ResultFailed    = "failed"
)

// Resolver resolves an earnings fact for a ticker. *resolve.Chain satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, ticker string) (resolve.Outcome[*entity.EarningsFact], error)
}

// Events is the subset of the event service a refresh needs.
type Events interface {
	List(ctx context.Context) ([]entity.StoredEvent, error)
	Add(ctx context.Context, in event.AddInput) (event.AddResult, error)
}

// Notifier is told about every event a run adds. Delivery failures are
// logged and never fail the run.
type Notifier interface {
	NotifyEarnings(ctx context.Context, ev entity.StoredEvent, source string) error
}

// Stats summarises one run.
type Stats struct {
	Stale     int
	Added     int
	Unchanged int
	NotFound  int
	Failed    int
	Duration  time.Duration
}

// Refresher runs refresh passes. Resolutions run with bounded parallelism;
// each chain still walks its providers sequentially. Merges are applied one
// at a time so a plain store never races with itself.
type Refresher struct {
	Events      Events
	Resolver    Resolver
	Concurrency int
	Location    *time.Location
	Logger      *slog.Logger
	Now         func() time.Time
	// Notifier is optional.
	Notifier Notifier
}

// Run performs one refresh pass. It returns an error only when the stored
// collection cannot be read or ctx ends; per-symbol failures are counted.
func (r *Refresher) Run(ctx context.Context) (Stats, error) {
	start := r.now()
	log := r.logger()

	events, err := r.Events.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list events: %w", err)
	}

	stale := staleEvents(events, r.today())
	stats := Stats{Stale: len(stale)}
	if len(stale) == 0 {
		stats.Duration = r.now().Sub(start)
		log.Info("refresh: nothing to do", slog.Int("events", len(events)))
		return stats, nil
	}

	facts := make([]*entity.EarningsFact, len(stale))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))
	for i, s := range stale {
		g.Go(func() error {
			out, err := r.Resolver.Resolve(gctx, s.Symbol)
			if err != nil {
				// only the context ends a chain with an error
				return err
			}
			if out.Found {
				facts[i] = out.Value
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("resolve stale symbols: %w", err)
	}

	for i, s := range stale {
		result := r.apply(ctx, s, facts[i])
		metrics.RecordRefreshSymbol(result)
		switch result {
		case ResultAdded:
			stats.Added++
		case ResultUnchanged:
			stats.Unchanged++
		case ResultNotFound:
			stats.NotFound++
		default:
			stats.Failed++
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
	}

	stats.Duration = r.now().Sub(start)
	return stats, nil
}

// apply merges one resolved fact, reusing the stored name and domain.
func (r *Refresher) apply(ctx context.Context, s entity.StoredEvent, fact *entity.EarningsFact) string {
	log := r.logger().With(slog.String("symbol", s.Symbol))

	if fact == nil {
		log.Debug("refresh: no upcoming report found")
		return ResultNotFound
	}

	name := s.Name
	if name == "" {
		name = fact.Name
	}
	in := event.AddInput{
		Symbol: s.Symbol,
		Name:   name,
		Date:   fact.Date,
		Time:   fact.Time,
		Domain: s.Domain,
	}
	added, err := r.Events.Add(ctx, in)
	if err != nil {
		if errors.Is(err, entity.ErrValidationFailed) {
			log.Warn("refresh: provider returned an unusable fact",
				slog.String("date", fact.Date), slog.Any("error", err))
		} else {
			log.Error("refresh: failed to store event", slog.Any("error", err))
		}
		return ResultFailed
	}
	if !added.Added {
		return ResultUnchanged
	}
	log.Info("refresh: event added",
		slog.String("date", fact.Date),
		slog.String("source", fact.Source))
	r.notify(ctx, log, in, fact.Source)
	return ResultAdded
}

func (r *Refresher) notify(ctx context.Context, log *slog.Logger, in event.AddInput, source string) {
	if r.Notifier == nil {
		return
	}
	// Add accepted in, so it canonicalizes cleanly
	ev, _ := event.Canonicalize(in)
	if err := r.Notifier.NotifyEarnings(ctx, ev, source); err != nil {
		log.Warn("refresh: alert not delivered", slog.Any("error", err))
	}
}

// staleEvents returns, per symbol (case-insensitive), the latest stored
// event when its date is before today. Symbols that already have a report
// on or after today are skipped, as are events with unparseable dates.
// The result is ordered by symbol.
func staleEvents(events []entity.StoredEvent, today time.Time) []entity.StoredEvent {
	latest := make(map[string]entity.StoredEvent)
	latestAt := make(map[string]time.Time)
	for _, ev := range events {
		d, ok := ev.ParsedDate()
		if !ok {
			continue
		}
		key := strings.ToUpper(ev.Symbol)
		if cur, seen := latestAt[key]; !seen || d.After(cur) {
			latest[key] = ev
			latestAt[key] = d
		}
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]entity.StoredEvent, 0, len(latest))
	for key, ev := range latest {
		if latestAt[key].Before(day) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToUpper(out[i].Symbol) < strings.ToUpper(out[j].Symbol)
	})
	return out
}

func (r *Refresher) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// today is the current calendar date in the configured location.
func (r *Refresher) today() time.Time {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return r.now().In(loc)
}

func (r *Refresher) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
