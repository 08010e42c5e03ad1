// Package resilience groups the fault-tolerance helpers used around
// upstream calls:
//
//   - circuitbreaker guards data providers (opt-in via
//     PROVIDER_BREAKER_ENABLED), the JSONBin store and the event database
//   - retry backs off on transient failures of the JSONBin store and the
//     chat webhooks
//
// Both compose; the JSONBin store retries inside its breaker so a burst of
// retries counts as one failure:
//
//	err := cb.Do(func() error {
//	    return retry.WithBackoff(ctx, retry.StoreHTTPConfig(), readBin)
//	})
package resilience
