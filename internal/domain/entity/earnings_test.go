package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-04-24", want: time.Date(2025, 4, 24, 0, 0, 0, 0, time.UTC)},
		{in: " 2025-04-24 ", want: time.Date(2025, 4, 24, 0, 0, 0, 0, time.UTC)},
		// converted to UTC before truncation
		{in: "2025-04-24T22:00:00-04:00", want: time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC)},
		{in: "04/24/2025", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestStoredEvent_SameKey(t *testing.T) {
	a := StoredEvent{Symbol: "NVDA", Date: "2025-05-28", Time: "amc"}

	assert.True(t, a.SameKey(StoredEvent{Symbol: "nvda", Date: "2025-05-28", Time: "TBD"}))
	assert.False(t, a.SameKey(StoredEvent{Symbol: "NVDA", Date: "2025-08-27"}))
	assert.False(t, a.SameKey(StoredEvent{Symbol: "AMD", Date: "2025-05-28"}))
}

func TestStoredEvent_ParsedDate(t *testing.T) {
	_, ok := StoredEvent{Date: "2025-05-28"}.ParsedDate()
	assert.True(t, ok)

	_, ok = StoredEvent{Date: "TBD"}.ParsedDate()
	assert.False(t, ok)
}

func TestEarningsFact_HasDate(t *testing.T) {
	var nilFact *EarningsFact
	assert.False(t, nilFact.HasDate())
	assert.False(t, (&EarningsFact{Date: "  "}).HasDate())
	assert.True(t, (&EarningsFact{Date: "2025-05-28"}).HasDate())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "2024-01-01", DateFromUnix(1704067200))
	assert.Equal(t, "nvda.com", DefaultDomain(" NVDA "))
	assert.Equal(t, "BRK.B", NormalizeTicker(" brk.b"))
}

func TestStoredEvent_JSONKeepsUnknownKeys(t *testing.T) {
	const in = `{"symbol":"AAPL","name":"Apple","date":"2025-05-01","time":"AMC","domain":"apple.com","eps":1.52,"source":"FMP"}`

	var ev StoredEvent
	require.NoError(t, json.Unmarshal([]byte(in), &ev))
	assert.Equal(t, "AAPL", ev.Symbol)
	assert.Equal(t, "apple.com", ev.Domain)
	require.Len(t, ev.Extra, 2)
	assert.JSONEq(t, `1.52`, string(ev.Extra["eps"]))

	out, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestStoredEvent_JSONWithoutExtras(t *testing.T) {
	var ev StoredEvent
	require.NoError(t, json.Unmarshal([]byte(`{"Symbol":"NVDA","date":"2025-02-26","time":"TBD","name":"NVDA","domain":"nvda.com"}`), &ev))
	assert.Nil(t, ev.Extra, "known keys match case-insensitively and are not duplicated")
	assert.Equal(t, "NVDA", ev.Symbol)

	out, err := json.Marshal(StoredEvent{Symbol: "NVDA", Name: "NVDA", Date: "2025-02-26", Time: "TBD", Domain: "nvda.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"NVDA","name":"NVDA","date":"2025-02-26","time":"TBD","domain":"nvda.com"}`, string(out))
}

func TestStoredEvent_KnownFieldsWinOverExtra(t *testing.T) {
	ev := StoredEvent{
		Symbol: "TSLA", Name: "Tesla", Date: "2025-04-22", Time: "AMC", Domain: "tesla.com",
		Extra: map[string]json.RawMessage{"symbol": json.RawMessage(`"OLD"`), "eps": json.RawMessage(`0.4`)},
	}

	out, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"TSLA","name":"Tesla","date":"2025-04-22","time":"AMC","domain":"tesla.com","eps":0.4}`, string(out))
}

func TestStoredEvent_MistypedKnownFieldFails(t *testing.T) {
	var ev StoredEvent
	assert.Error(t, json.Unmarshal([]byte(`{"symbol":"AAPL","date":"2025-05-01","time":1600}`), &ev))
}
