package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/observability/logging"
	"earnings-radar/internal/observability/metrics"
	"earnings-radar/internal/repository"
)

// AddResult is the collection after an Add.
type AddResult struct {
	Events []entity.StoredEvent
	// Added is false when the event was already stored.
	Added bool
}

// Service reads and appends to the stored event collection.
//
// With a plain EventStore, Add is read-modify-write and concurrent adds
// race (last writer wins). With a VersionedEventStore the write is
// conditional and retried up to MaxConflictRetries times.
type Service struct {
	Store              repository.EventStore
	MaxConflictRetries int
}

// List returns the stored collection.
func (s *Service) List(ctx context.Context) ([]entity.StoredEvent, error) {
	events, err := s.Store.ReadLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []entity.StoredEvent{}
	}
	return events, nil
}

// Add canonicalizes in and merges it into the collection. Adding an event
// that already exists returns the unchanged collection without writing.
func (s *Service) Add(ctx context.Context, in AddInput) (AddResult, error) {
	ev, err := Canonicalize(in)
	if err != nil {
		return AddResult{}, err
	}

	if vs, ok := s.Store.(repository.VersionedEventStore); ok {
		return s.addVersioned(ctx, vs, ev)
	}

	events, err := s.Store.ReadLatest(ctx)
	if err != nil {
		return AddResult{}, fmt.Errorf("read events: %w", err)
	}
	merged, added := Merge(events, ev)
	if !added {
		logDuplicate(ctx, ev)
		return AddResult{Events: nonNil(events)}, nil
	}
	if err := s.Store.OverwriteAll(ctx, merged); err != nil {
		return AddResult{}, fmt.Errorf("write events: %w", err)
	}
	logAdded(ctx, ev, len(merged))
	return AddResult{Events: merged, Added: true}, nil
}

func (s *Service) addVersioned(ctx context.Context, vs repository.VersionedEventStore, ev entity.StoredEvent) (AddResult, error) {
	attempts := s.MaxConflictRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		events, version, err := vs.ReadVersioned(ctx)
		if err != nil {
			return AddResult{}, fmt.Errorf("read events: %w", err)
		}

		merged, added := Merge(events, ev)
		if !added {
			logDuplicate(ctx, ev)
			return AddResult{Events: nonNil(events)}, nil
		}

		err = vs.OverwriteIfVersion(ctx, merged, version)
		if err == nil {
			logAdded(ctx, ev, len(merged))
			return AddResult{Events: merged, Added: true}, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return AddResult{}, fmt.Errorf("write events: %w", err)
		}

		metrics.RecordStoreConflict()
		logging.FromContext(ctx).Warn("event collection changed during add, retrying",
			slog.String("symbol", ev.Symbol),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts))
	}

	return AddResult{}, fmt.Errorf("%w after %d attempts: %w", ErrConflictRetriesExhausted, attempts, repository.ErrVersionConflict)
}

func logDuplicate(ctx context.Context, ev entity.StoredEvent) {
	logging.FromContext(ctx).Debug("duplicate event, skipping",
		slog.String("symbol", ev.Symbol),
		slog.String("date", ev.Date))
}

func logAdded(ctx context.Context, ev entity.StoredEvent, total int) {
	logging.FromContext(ctx).Info("event added",
		slog.String("symbol", ev.Symbol),
		slog.String("date", ev.Date),
		slog.Int("total", total))
}

func nonNil(events []entity.StoredEvent) []entity.StoredEvent {
	if events == nil {
		return []entity.StoredEvent{}
	}
	return events
}
