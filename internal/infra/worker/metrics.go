package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks worker configuration health and the last successful
// refresh. Per-run and per-symbol counters live in observability/metrics.
type Metrics struct {
	ConfigLoadTimestamp  prometheus.Gauge
	ConfigFallbacksTotal *prometheus.CounterVec
	ConfigFallbackActive prometheus.Gauge
	LastSuccessTimestamp prometheus.Gauge
}

// NewMetrics registers the worker metrics with the default registry.
// Call it once per process.
func NewMetrics() *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer))
}

func newMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		ConfigLoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_load_timestamp",
			Help: "Unix timestamp of the last worker configuration load",
		}),
		ConfigFallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Invalid worker settings replaced by their default, by env key",
		}, []string{"key"}),
		ConfigFallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_fallback_active",
			Help: "1 when any worker setting is running on a fallback default",
		}),
		LastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh run",
		}),
	}
}

// RecordLoadTimestamp marks a configuration load.
func (m *Metrics) RecordLoadTimestamp() { m.ConfigLoadTimestamp.SetToCurrentTime() }

// RecordFallback counts one fallback for key.
func (m *Metrics) RecordFallback(key string) { m.ConfigFallbacksTotal.WithLabelValues(key).Inc() }

// SetFallbackActive flags whether any fallback is in effect.
func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.ConfigFallbackActive.Set(1)
		return
	}
	m.ConfigFallbackActive.Set(0)
}

// RecordLastSuccess stamps the current time as the last successful run.
func (m *Metrics) RecordLastSuccess() { m.LastSuccessTimestamp.SetToCurrentTime() }
