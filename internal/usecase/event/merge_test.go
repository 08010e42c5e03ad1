package event

import (
	"errors"
	"testing"

	"earnings-radar/internal/domain/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   AddInput
		want entity.StoredEvent
	}{
		{
			name: "defaults from lowercase symbol",
			in:   AddInput{Symbol: "nvda", Date: "2025-02-26"},
			want: entity.StoredEvent{Symbol: "NVDA", Name: "nvda", Date: "2025-02-26", Time: "TBD", Domain: "nvda.com"},
		},
		{
			name: "explicit fields kept",
			in:   AddInput{Symbol: " aapl ", Name: "Apple Inc.", Date: "2025-01-30", Time: "AMC", Domain: "apple.com"},
			want: entity.StoredEvent{Symbol: "AAPL", Name: "Apple Inc.", Date: "2025-01-30", Time: "AMC", Domain: "apple.com"},
		},
		{
			name: "timestamp truncated to date",
			in:   AddInput{Symbol: "MSFT", Date: "2025-01-29T21:05:00Z"},
			want: entity.StoredEvent{Symbol: "MSFT", Name: "MSFT", Date: "2025-01-29", Time: "TBD", Domain: "msft.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalize_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		in    AddInput
		field string
	}{
		{"missing symbol", AddInput{Date: "2025-01-30"}, "symbol"},
		{"bad symbol", AddInput{Symbol: "$$$", Date: "2025-01-30"}, "symbol"},
		{"missing date", AddInput{Symbol: "AAPL"}, "date"},
		{"bad date", AddInput{Symbol: "AAPL", Date: "30/01/2025"}, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Canonicalize(tt.in)
			var ve *entity.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, entity.ErrValidationFailed)
		})
	}
}

func TestMerge_IsIdempotent(t *testing.T) {
	ev := entity.StoredEvent{Symbol: "AAPL", Date: "2025-01-30"}

	once, added := Merge(nil, ev)
	require.True(t, added)

	twice, added := Merge(once, ev)
	assert.False(t, added)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second merge changed the collection (-once +twice):\n%s", diff)
	}
}

func TestMerge_DuplicateIgnoresSymbolCase(t *testing.T) {
	events := []entity.StoredEvent{{Symbol: "AAPL", Date: "2025-01-30"}}
	_, added := Merge(events, entity.StoredEvent{Symbol: "aapl", Date: "2025-01-30"})
	assert.False(t, added)

	_, added = Merge(events, entity.StoredEvent{Symbol: "AAPL", Date: "2025-04-30"})
	assert.True(t, added, "same symbol on another date is a new event")
}

func TestMerge_SortsAndKeepsTieOrder(t *testing.T) {
	events := []entity.StoredEvent{
		{Symbol: "MSFT", Date: "2025-01-29"},
		{Symbol: "META", Date: "2025-01-29"},
		{Symbol: "AMZN", Date: "2025-02-06"},
	}

	got, added := Merge(events, entity.StoredEvent{Symbol: "TSLA", Date: "2025-01-29"})
	require.True(t, added)

	want := []string{"MSFT", "META", "TSLA", "AMZN"}
	var symbols []string
	for _, e := range got {
		symbols = append(symbols, e.Symbol)
	}
	assert.Equal(t, want, symbols)

	got, _ = Merge(got, entity.StoredEvent{Symbol: "AAPL", Date: "2025-01-02"})
	assert.Equal(t, "AAPL", got[0].Symbol)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	events := make([]entity.StoredEvent, 1, 4)
	events[0] = entity.StoredEvent{Symbol: "ZZZ", Date: "2025-12-01"}

	_, _ = Merge(events, entity.StoredEvent{Symbol: "AAA", Date: "2025-01-01"})

	assert.Equal(t, "ZZZ", events[0].Symbol)
	assert.Len(t, events, 1)
}

func TestSortByDate_UnparseableLast(t *testing.T) {
	events := []entity.StoredEvent{
		{Symbol: "BAD", Date: "soon"},
		{Symbol: "B", Date: "2025-03-01"},
		{Symbol: "A", Date: "2025-01-01"},
	}
	SortByDate(events)
	assert.Equal(t, []string{"A", "B", "BAD"}, []string{events[0].Symbol, events[1].Symbol, events[2].Symbol})
}
