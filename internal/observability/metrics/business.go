package metrics

import (
	"time"
)

// RecordProviderAttempt records a single provider call within a fallback chain.
// Result is one of "used", "empty", "failed", "misconfigured" or "skipped".
func RecordProviderAttempt(chain, provider, result string, duration time.Duration) {
	ProviderAttemptsTotal.WithLabelValues(chain, provider, result).Inc()
	ProviderAttemptDuration.WithLabelValues(chain, provider).Observe(duration.Seconds())
}

// RecordResolution records the outcome of a whole chain resolution.
func RecordResolution(chain string, found bool) {
	outcome := "found"
	if !found {
		outcome = "not_found"
	}
	ResolutionsTotal.WithLabelValues(chain, outcome).Inc()
}

// RecordResolutionCanceled records a resolution abandoned by the caller.
func RecordResolutionCanceled(chain string) {
	ResolutionsTotal.WithLabelValues(chain, "canceled").Inc()
}

// RecordSentiment records the label assigned to one news item.
func RecordSentiment(label string) {
	SentimentLabelsTotal.WithLabelValues(label).Inc()
}

// RecordStoreOperation records an event store read or write.
//
// Example:
//
//	start := time.Now()
//	events, err := s.ReadLatest(ctx)
//	metrics.RecordStoreOperation("jsonbin", "read", time.Since(start), err)
func RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	StoreOperationDuration.WithLabelValues(backend, operation, status).Observe(duration.Seconds())
}

// RecordStoreConflict records an optimistic concurrency conflict.
func RecordStoreConflict() {
	StoreConflictsTotal.Inc()
}

// UpdateStoredEventsTotal updates the stored collection size gauge.
func UpdateStoredEventsTotal(count int) {
	StoredEventsTotal.Set(float64(count))
}

// RecordRefreshRun records a completed refresh run.
func RecordRefreshRun(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	RefreshRunsTotal.WithLabelValues(status).Inc()
	RefreshDuration.Observe(duration.Seconds())
}

// RecordRefreshSymbol records the result of refreshing one symbol.
func RecordRefreshSymbol(result string) {
	RefreshSymbolsTotal.WithLabelValues(result).Inc()
}

// RecordNotification records one alert delivery attempt to a channel.
func RecordNotification(channel string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	NotificationsTotal.WithLabelValues(channel, status).Inc()
}

// RecordBreakerState records a breaker moving into state, where state is
// "closed", "half-open" or "open".
func RecordBreakerState(breaker, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	CircuitBreakerState.WithLabelValues(breaker).Set(v)
	CircuitBreakerTransitionsTotal.WithLabelValues(breaker, state).Inc()
}
