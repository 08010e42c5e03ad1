// Package postgres stores the event collection as one JSONB row with a
// version counter, so concurrent writers can be detected.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/repository"
	"earnings-radar/internal/resilience/circuitbreaker"
)

const (
	selectDocument = `SELECT payload, version FROM events_document WHERE id = 1`

	upsertDocument = `
INSERT INTO events_document (id, payload, version, updated_at)
VALUES (1, $1, 1, now())
ON CONFLICT (id) DO UPDATE
SET payload = EXCLUDED.payload, version = events_document.version + 1, updated_at = now()`

	insertFirstDocument = `
INSERT INTO events_document (id, payload, version, updated_at)
VALUES (1, $1, 1, now())
ON CONFLICT (id) DO NOTHING`

	updateIfVersion = `
UPDATE events_document
SET payload = $1, version = version + 1, updated_at = now()
WHERE id = 1 AND version = $2`
)

// Store is the postgres-backed event store.
type Store struct {
	db *circuitbreaker.DB
}

var _ repository.VersionedEventStore = (*Store)(nil)

// New wraps db with the database circuit breaker.
func New(db *sql.DB) *Store {
	return &Store{db: circuitbreaker.NewDB(db)}
}

// ReadLatest implements repository.EventStore.
func (s *Store) ReadLatest(ctx context.Context) ([]entity.StoredEvent, error) {
	events, _, err := s.ReadVersioned(ctx)
	return events, err
}

// ReadVersioned implements repository.VersionedEventStore. A missing row is
// an empty collection at version 0.
func (s *Store) ReadVersioned(ctx context.Context) ([]entity.StoredEvent, int64, error) {
	var (
		payload []byte
		version int64
	)
	err := s.db.QueryOne(ctx, selectDocument, nil, &payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return []entity.StoredEvent{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("select events: %w", err)
	}

	events := []entity.StoredEvent{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &events); err != nil {
			return nil, 0, fmt.Errorf("decode events: %w", err)
		}
	}
	return events, version, nil
}

// OverwriteAll implements repository.EventStore.
func (s *Store) OverwriteAll(ctx context.Context, events []entity.StoredEvent) error {
	payload, err := encode(events)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, upsertDocument, payload); err != nil {
		return fmt.Errorf("upsert events: %w", err)
	}
	return nil
}

// OverwriteIfVersion implements repository.VersionedEventStore.
func (s *Store) OverwriteIfVersion(ctx context.Context, events []entity.StoredEvent, version int64) error {
	payload, err := encode(events)
	if err != nil {
		return err
	}

	var res sql.Result
	if version == 0 {
		res, err = s.db.Exec(ctx, insertFirstDocument, payload)
	} else {
		res, err = s.db.Exec(ctx, updateIfVersion, payload, version)
	}
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	if n == 0 {
		return repository.ErrVersionConflict
	}
	return nil
}

func encode(events []entity.StoredEvent) ([]byte, error) {
	if events == nil {
		events = []entity.StoredEvent{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}
	return b, nil
}
