package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := testMetrics()

	m.RecordFallback("WORKER_TIMEZONE")
	m.RecordFallback("WORKER_TIMEZONE")
	m.SetFallbackActive(true)
	m.RecordLoadTimestamp()
	m.RecordLastSuccess()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ConfigFallbacksTotal.WithLabelValues("WORKER_TIMEZONE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ConfigFallbackActive))
	assert.Greater(t, testutil.ToFloat64(m.ConfigLoadTimestamp), float64(0))
	assert.Greater(t, testutil.ToFloat64(m.LastSuccessTimestamp), float64(0))

	m.SetFallbackActive(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ConfigFallbackActive))
}
