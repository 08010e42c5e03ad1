// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Provider metrics (attempts per fallback chain, resolution outcomes)
//   - Sentiment label distribution
//   - Event store and refresh worker metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "earnings-radar/internal/observability/metrics"
//
//	start := time.Now()
//	fact, err := provider.Resolve(ctx, ticker)
//	metrics.RecordProviderAttempt("earnings", provider.Name(), "used", time.Since(start))
package metrics
