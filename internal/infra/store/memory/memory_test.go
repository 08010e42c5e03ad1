package memory

import (
	"context"
	"testing"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	s := New()

	events, err := s.ReadLatest(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	in := []entity.StoredEvent{{Symbol: "AAPL", Name: "Apple", Date: "2025-01-30", Time: "AMC", Domain: "apple.com"}}
	require.NoError(t, s.OverwriteAll(ctx, in))

	in[0].Symbol = "MUTATED"
	got, err := s.ReadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got[0].Symbol, "store keeps its own copy")
}

func TestStore_OverwriteIfVersion(t *testing.T) {
	ctx := context.Background()
	s := New(entity.StoredEvent{Symbol: "MSFT", Date: "2025-01-29"})

	_, v, err := s.ReadVersioned(ctx)
	require.NoError(t, err)

	require.NoError(t, s.OverwriteIfVersion(ctx, nil, v))

	err = s.OverwriteIfVersion(ctx, []entity.StoredEvent{{Symbol: "X"}}, v)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	events, v2, err := s.ReadVersioned(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, v+1, v2)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ReadLatest(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
