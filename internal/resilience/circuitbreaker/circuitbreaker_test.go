package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-radar/internal/observability/metrics"
)

var errUpstream = errors.New("upstream 503")

func testConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func fail(cb *CircuitBreaker, n int) {
	for range n {
		_ = cb.Do(func() error { return errUpstream })
	}
}

func TestExecute_PassesResultAndError(t *testing.T) {
	cb := New(testConfig("cb-pass"))

	v, err := cb.Execute(func() (interface{}, error) { return "2025-05-01", nil })
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", v)

	v, err = cb.Execute(func() (interface{}, error) { return nil, errUpstream })
	assert.ErrorIs(t, err, errUpstream)
	assert.Nil(t, v)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestTripsOnFailureRatio(t *testing.T) {
	cb := New(testConfig("cb-ratio"))

	// 4 of 5 failed: 80% over the 60% threshold
	fail(cb, 4)
	require.NoError(t, cb.Do(func() error { return nil }))
	assert.Equal(t, gobreaker.StateClosed, cb.State(), "ratio is checked on failure")

	fail(cb, 1)
	require.True(t, cb.IsOpen())

	calls := 0
	err := cb.Do(func() error { calls++; return nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Zero(t, calls)
}

func TestStaysClosedBelowMinRequests(t *testing.T) {
	cfg := testConfig("cb-min")
	cfg.MinRequests = 10
	cb := New(cfg)

	fail(cb, 9)

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestHalfOpenProbeCloses(t *testing.T) {
	cb := New(testConfig("cb-probe"))
	fail(cb, 5)
	require.True(t, cb.IsOpen())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, cb.State())

	require.NoError(t, cb.Do(func() error { return nil }))
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestIsSuccessfulErrorsNeverTrip(t *testing.T) {
	missingKey := errors.New("FMP_API_KEY not set")
	cfg := testConfig("cb-classified")
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, missingKey) }
	cb := New(cfg)

	for range 10 {
		assert.ErrorIs(t, cb.Do(func() error { return missingKey }), missingKey)
	}

	assert.False(t, cb.IsOpen())
}

func TestStateChangesArePublished(t *testing.T) {
	cb := New(testConfig("cb-metrics"))
	gauge := metrics.CircuitBreakerState.WithLabelValues("cb-metrics")
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge))

	fail(cb, 5)
	assert.Equal(t, 2.0, testutil.ToFloat64(gauge))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CircuitBreakerTransitionsTotal.WithLabelValues("cb-metrics", "open")))

	time.Sleep(80 * time.Millisecond)
	_ = cb.State() // the half-open transition happens on access
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge))
}

func TestPresetConfigs(t *testing.T) {
	p := ProviderConfig("FMP")
	assert.Equal(t, "provider-FMP", p.Name)
	assert.Equal(t, uint32(1), p.MaxRequests)
	assert.Equal(t, 30*time.Second, p.Timeout)

	s := StoreConfig()
	assert.Equal(t, "event-store", s.Name)
	assert.Equal(t, uint32(3), s.MaxRequests)
}
