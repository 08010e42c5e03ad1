// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks requests currently being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Provider metrics track upstream data provider behaviour
var (
	// ProviderAttemptsTotal counts provider calls by chain, provider and result
	// (used, empty, failed, misconfigured, skipped).
	ProviderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_attempts_total",
			Help: "Total number of upstream provider attempts",
		},
		[]string{"chain", "provider", "result"},
	)

	// ProviderAttemptDuration measures a single provider call
	ProviderAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_attempt_duration_seconds",
			Help:    "Upstream provider call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"chain", "provider"},
	)

	// ResolutionsTotal counts chain resolutions by outcome (found, not_found, canceled)
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolutions_total",
			Help: "Total number of fallback chain resolutions",
		},
		[]string{"chain", "outcome"},
	)

	// SentimentLabelsTotal counts scored or natively labelled news items
	SentimentLabelsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_sentiment_labels_total",
			Help: "Total number of news items by sentiment label",
		},
		[]string{"label"},
	)
)

// Store metrics track event store gateway operations
var (
	// StoreOperationDuration measures store reads and writes
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Event store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"backend", "operation", "status"},
	)

	// StoreConflictsTotal counts optimistic write conflicts
	StoreConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_version_conflicts_total",
			Help: "Total number of optimistic concurrency conflicts on event writes",
		},
	)

	// StoredEventsTotal tracks the size of the stored event collection
	StoredEventsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stored_events_total",
			Help: "Number of events in the stored collection",
		},
	)
)

// Worker metrics track the scheduled refresh job
var (
	// RefreshRunsTotal counts refresh runs by status
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_runs_total",
			Help: "Total number of scheduled refresh runs",
		},
		[]string{"status"},
	)

	// RefreshSymbolsTotal counts per-symbol refresh results (added, unchanged, not_found, failed)
	RefreshSymbolsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_symbols_total",
			Help: "Total number of symbols processed by refresh runs",
		},
		[]string{"result"},
	)

	// RefreshDuration measures an entire refresh run
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Duration of a scheduled refresh run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// NotificationsTotal counts earnings alerts sent per channel
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of earnings alerts sent to webhook channels",
		},
		[]string{"channel", "status"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// CircuitBreakerTransitionsTotal counts state changes by target state
	CircuitBreakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state changes",
		},
		[]string{"breaker", "to"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
