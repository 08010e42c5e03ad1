// Package repository declares the persistence contracts used by the use cases.
package repository

import (
	"context"
	"errors"

	"earnings-radar/internal/domain/entity"
)

var (
	// ErrStoreNotConfigured is returned by every call on a store whose
	// backend credentials are missing.
	ErrStoreNotConfigured = errors.New("event store not configured")

	// ErrVersionConflict is returned by OverwriteIfVersion when the stored
	// collection changed since it was read.
	ErrVersionConflict = errors.New("event store version conflict")
)

// EventStore persists the whole event collection as one document.
// There is no partial update: callers read, modify and overwrite.
type EventStore interface {
	// ReadLatest returns the current collection. A store that was never
	// written returns an empty collection and no error.
	ReadLatest(ctx context.Context) ([]entity.StoredEvent, error)
	// OverwriteAll replaces the collection. Concurrent writers race and the
	// last one wins.
	OverwriteAll(ctx context.Context, events []entity.StoredEvent) error
}

// VersionedEventStore is implemented by backends that can detect a
// concurrent write between read and overwrite.
type VersionedEventStore interface {
	EventStore
	// ReadVersioned returns the collection with an opaque version token.
	ReadVersioned(ctx context.Context) ([]entity.StoredEvent, int64, error)
	// OverwriteIfVersion replaces the collection only if it is still at
	// version; otherwise it returns ErrVersionConflict.
	OverwriteIfVersion(ctx context.Context, events []entity.StoredEvent, version int64) error
}
