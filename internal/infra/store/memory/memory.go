// Package memory provides an in-process event store for development and tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/repository"
)

// Store keeps the collection in memory. It is safe for concurrent use and
// supports optimistic writes.
type Store struct {
	mu      sync.RWMutex
	events  []entity.StoredEvent
	version int64
}

var _ repository.VersionedEventStore = (*Store)(nil)

// New returns a store seeded with events.
func New(events ...entity.StoredEvent) *Store {
	return &Store{events: clone(events)}
}

// ReadLatest implements repository.EventStore.
func (s *Store) ReadLatest(ctx context.Context) ([]entity.StoredEvent, error) {
	events, _, err := s.ReadVersioned(ctx)
	return events, err
}

// OverwriteAll implements repository.EventStore.
func (s *Store) OverwriteAll(ctx context.Context, events []entity.StoredEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = clone(events)
	s.version++
	return nil
}

// ReadVersioned implements repository.VersionedEventStore.
func (s *Store) ReadVersioned(ctx context.Context) ([]entity.StoredEvent, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.events), s.version, nil
}

// OverwriteIfVersion implements repository.VersionedEventStore.
func (s *Store) OverwriteIfVersion(ctx context.Context, events []entity.StoredEvent, version int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		return repository.ErrVersionConflict
	}
	s.events = clone(events)
	s.version++
	return nil
}

func clone(events []entity.StoredEvent) []entity.StoredEvent {
	out := make([]entity.StoredEvent, len(events))
	copy(out, events)
	for i := range out {
		out[i].Extra = maps.Clone(out[i].Extra)
	}
	return out
}
