package store

import (
	"context"
	"time"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/observability/metrics"
	"earnings-radar/internal/repository"
)

// Instrument wraps s so every call is timed into the store metrics. A
// versioned store stays versioned.
func Instrument(backend string, s repository.EventStore) repository.EventStore {
	base := instrumented{backend: backend, inner: s}
	if v, ok := s.(repository.VersionedEventStore); ok {
		return &instrumentedVersioned{instrumented: base, versioned: v}
	}
	return &base
}

type instrumented struct {
	backend string
	inner   repository.EventStore
}

func (i *instrumented) ReadLatest(ctx context.Context) ([]entity.StoredEvent, error) {
	start := time.Now()
	events, err := i.inner.ReadLatest(ctx)
	metrics.RecordStoreOperation(i.backend, "read", time.Since(start), err)
	if err == nil {
		metrics.UpdateStoredEventsTotal(len(events))
	}
	return events, err
}

func (i *instrumented) OverwriteAll(ctx context.Context, events []entity.StoredEvent) error {
	start := time.Now()
	err := i.inner.OverwriteAll(ctx, events)
	metrics.RecordStoreOperation(i.backend, "write", time.Since(start), err)
	if err == nil {
		metrics.UpdateStoredEventsTotal(len(events))
	}
	return err
}

type instrumentedVersioned struct {
	instrumented
	versioned repository.VersionedEventStore
}

func (i *instrumentedVersioned) ReadVersioned(ctx context.Context) ([]entity.StoredEvent, int64, error) {
	start := time.Now()
	events, version, err := i.versioned.ReadVersioned(ctx)
	metrics.RecordStoreOperation(i.backend, "read", time.Since(start), err)
	if err == nil {
		metrics.UpdateStoredEventsTotal(len(events))
	}
	return events, version, err
}

func (i *instrumentedVersioned) OverwriteIfVersion(ctx context.Context, events []entity.StoredEvent, version int64) error {
	start := time.Now()
	err := i.versioned.OverwriteIfVersion(ctx, events, version)
	metrics.RecordStoreOperation(i.backend, "write_if_version", time.Since(start), err)
	if err == nil {
		metrics.UpdateStoredEventsTotal(len(events))
	}
	return err
}
