package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/observability/metrics"
	"earnings-radar/internal/resilience/retry"
)

// ErrInvalidWebhookURL is returned for webhook URLs that do not point at
// the expected service.
var ErrInvalidWebhookURL = errors.New("invalid webhook url")

// maxErrorBody bounds how much of an error response ends up in an error.
const maxErrorBody = 256

// webhook posts JSON payloads to one URL. The URL embeds the channel
// secret, so it never appears in errors.
type webhook struct {
	channel string
	url     string
	client  *http.Client
	limiter *rate.Limiter
	retry   retry.Config
}

func newWebhook(channel, rawURL string, timeout time.Duration, limit rate.Limit, burst int) *webhook {
	return &webhook{
		channel: channel,
		url:     rawURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		retry:   retry.WebhookConfig(channel),
	}
}

// post waits for the channel budget, then sends payload, retrying 5xx,
// 408 and 429 responses.
func (w *webhook) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", w.channel, err)
	}

	err = retry.WithBackoff(ctx, w.retry, func() error {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		return w.send(ctx, body)
	})
	metrics.RecordNotification(w.channel, err)
	if err != nil {
		return fmt.Errorf("%s: %w", w.channel, err)
	}
	return nil
}

func (w *webhook) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := w.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// drop the URL, keep the cause
			return fmt.Errorf("post webhook: %w", urlErr.Err)
		}
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return retry.NewHTTPError(resp, strings.TrimSpace(string(msg)))
}

// validateWebhookURL requires an https URL on host whose path starts with prefix.
func validateWebhookURL(raw, host, prefix string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: unparseable", ErrInvalidWebhookURL)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be https", ErrInvalidWebhookURL)
	}
	if u.Host != host {
		return fmt.Errorf("%w: host must be %s", ErrInvalidWebhookURL, host)
	}
	if !strings.HasPrefix(u.Path, prefix) {
		return fmt.Errorf("%w: path must start with %s", ErrInvalidWebhookURL, prefix)
	}
	return nil
}

// headline is the one-line summary shared by every channel.
func headline(ev entity.StoredEvent) string {
	name := ev.Name
	if name == "" || strings.EqualFold(name, ev.Symbol) {
		return fmt.Sprintf("%s reports on %s (%s)", ev.Symbol, ev.Date, ev.Time)
	}
	return fmt.Sprintf("%s (%s) reports on %s (%s)", name, ev.Symbol, ev.Date, ev.Time)
}
