// Package retry re-runs calls to the event store and chat webhooks when
// they fail transiently, backing off exponentially between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"earnings-radar/internal/observability/logging"
)

// Config describes one retry policy.
type Config struct {
	// Operation names the call in logs, e.g. "jsonbin" or "discord".
	Operation string

	// MaxAttempts counts the first call, so 1 disables retries.
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// JitterFraction adds up to this fraction of the delay at random (0 to 1).
	JitterFraction float64
}

// StoreHTTPConfig is the policy for the HTTP document store. Requests sit
// on the user path, so retries are few and short.
func StoreHTTPConfig() Config {
	return Config{
		Operation:      "jsonbin",
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WebhookConfig is the policy for chat webhooks. A lost alert is cheap,
// so there is a single retry.
func WebhookConfig(channel string) Config {
	return Config{
		Operation:      channel,
		MaxAttempts:    2,
		InitialDelay:   time.Second,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WithBackoff calls fn until it succeeds, fails with a non-retryable error,
// runs out of attempts, or ctx ends. A Retry-After hint on an HTTPError
// stretches the next delay, capped at MaxDelay.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	log := logging.FromContext(ctx).With(slog.String("operation", cfg.Operation))
	attempts := max(cfg.MaxAttempts, 1)
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				log.Info("succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		wait := min(max(delay, retryAfter(err)), cfg.MaxDelay)
		log.Warn("transient failure, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", err))
		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("retry aborted: %w", err)
		}

		delay = addJitter(min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay), cfg.JitterFraction)
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRetryable reports whether err is worth another attempt: network
// timeouts, refused or reset connections, 5xx, 408 and 429. Caller
// cancellation never is.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code := httpErr.StatusCode
		return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
	}
	return false
}

// HTTPError is a non-2xx upstream answer.
type HTTPError struct {
	StatusCode int
	Message    string

	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError builds the error for resp, reading its Retry-After header
// in either the delay-seconds or the HTTP-date form.
func NewHTTPError(resp *http.Response, message string) *HTTPError {
	e := &HTTPError{StatusCode: resp.StatusCode, Message: message}
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return e
	}
	if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
		e.RetryAfter = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(h); err == nil {
		e.RetryAfter = max(time.Until(at), 0)
	}
	return e
}

func retryAfter(err error) time.Duration {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.RetryAfter
	}
	return 0
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	fraction = min(fraction, 1.0)
	// #nosec G404 -- backoff jitter needs no cryptographic randomness
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
