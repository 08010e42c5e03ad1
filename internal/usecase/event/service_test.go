package event_test

import (
	"context"
	"errors"
	"testing"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/store/memory"
	"earnings-radar/internal/repository"
	"earnings-radar/internal/usecase/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── stubs ───────── */

// plainStore is a last-writer-wins store without versioning.
type plainStore struct {
	events   []entity.StoredEvent
	writes   int
	readErr  error
	writeErr error
}

func (p *plainStore) ReadLatest(context.Context) ([]entity.StoredEvent, error) {
	return p.events, p.readErr
}

func (p *plainStore) OverwriteAll(_ context.Context, events []entity.StoredEvent) error {
	if p.writeErr != nil {
		return p.writeErr
	}
	p.writes++
	p.events = events
	return nil
}

// racingStore sneaks a concurrent write in before the first n conditional writes.
type racingStore struct {
	*memory.Store
	races int
}

func (r *racingStore) OverwriteIfVersion(ctx context.Context, events []entity.StoredEvent, version int64) error {
	if r.races > 0 {
		r.races--
		cur, _ := r.Store.ReadLatest(ctx)
		_ = r.Store.OverwriteAll(ctx, append(cur, entity.StoredEvent{Symbol: "RACE", Date: "2030-01-01"}))
	}
	return r.Store.OverwriteIfVersion(ctx, events, version)
}

/* ───────── tests ───────── */

func TestAdd_CanonicalizesNewEvent(t *testing.T) {
	store := &plainStore{}
	svc := &event.Service{Store: store}

	res, err := svc.Add(context.Background(), event.AddInput{Symbol: "nvda", Date: "2025-02-26"})

	require.NoError(t, err)
	assert.True(t, res.Added)
	require.Len(t, res.Events, 1)
	assert.Equal(t, entity.StoredEvent{Symbol: "NVDA", Name: "nvda", Date: "2025-02-26", Time: "TBD", Domain: "nvda.com"}, res.Events[0])
	assert.Equal(t, 1, store.writes)
}

func TestAdd_DuplicateIsUnchangedAndNotWritten(t *testing.T) {
	store := &plainStore{events: []entity.StoredEvent{{Symbol: "NVDA", Name: "NVIDIA", Date: "2025-02-26", Time: "AMC", Domain: "nvidia.com"}}}
	svc := &event.Service{Store: store}

	res, err := svc.Add(context.Background(), event.AddInput{Symbol: "nvda", Date: "2025-02-26"})

	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Len(t, res.Events, 1)
	assert.Equal(t, "NVIDIA", res.Events[0].Name)
	assert.Zero(t, store.writes)
}

func TestAdd_ValidationNeverTouchesStore(t *testing.T) {
	store := &plainStore{readErr: errors.New("should not be called")}
	svc := &event.Service{Store: store}

	_, err := svc.Add(context.Background(), event.AddInput{Symbol: "AAPL"})
	assert.ErrorIs(t, err, entity.ErrValidationFailed)
}

func TestAdd_StoreErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := (&event.Service{Store: &plainStore{readErr: boom}}).Add(context.Background(), event.AddInput{Symbol: "A", Date: "2025-01-01"})
	assert.ErrorIs(t, err, boom)

	_, err = (&event.Service{Store: &plainStore{writeErr: boom}}).Add(context.Background(), event.AddInput{Symbol: "A", Date: "2025-01-01"})
	assert.ErrorIs(t, err, boom)
}

func TestAdd_StoreNotConfigured(t *testing.T) {
	svc := &event.Service{Store: &plainStore{readErr: repository.ErrStoreNotConfigured}}
	_, err := svc.Add(context.Background(), event.AddInput{Symbol: "A", Date: "2025-01-01"})
	assert.ErrorIs(t, err, repository.ErrStoreNotConfigured)
}

func TestAdd_VersionedRetriesConflicts(t *testing.T) {
	store := &racingStore{Store: memory.New(), races: 2}
	svc := &event.Service{Store: store, MaxConflictRetries: 3}

	res, err := svc.Add(context.Background(), event.AddInput{Symbol: "AAPL", Date: "2025-01-30"})

	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.Len(t, res.Events, 3, "both racing writes survive")
	assert.Equal(t, "AAPL", res.Events[0].Symbol)
}

func TestAdd_VersionedGivesUp(t *testing.T) {
	store := &racingStore{Store: memory.New(), races: 5}
	svc := &event.Service{Store: store, MaxConflictRetries: 2}

	_, err := svc.Add(context.Background(), event.AddInput{Symbol: "AAPL", Date: "2025-01-30"})

	assert.ErrorIs(t, err, event.ErrConflictRetriesExhausted)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
}

func TestList(t *testing.T) {
	svc := &event.Service{Store: &plainStore{}}
	events, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	svc = &event.Service{Store: &plainStore{readErr: repository.ErrStoreNotConfigured}}
	_, err = svc.List(context.Background())
	assert.ErrorIs(t, err, repository.ErrStoreNotConfigured)
}
