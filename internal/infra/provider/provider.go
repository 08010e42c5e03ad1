// Package provider holds the HTTP plumbing shared by the earnings and news
// adapters: typed upstream errors, a status-checking GET helper and the
// optional rate/breaker guard.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"earnings-radar/internal/observability/logging"
	"earnings-radar/internal/usecase/resolve"
)

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 4 << 20

// UserAgent is sent on every upstream request. Yahoo rejects the Go default.
const UserAgent = "Mozilla/5.0 (compatible; earnings-radar/1.0)"

// Kind classifies an upstream failure.
type Kind string

const (
	KindMisconfigured Kind = "misconfigured"
	KindTransport     Kind = "transport"
	KindStatus        Kind = "status"
	KindRateLimited   Kind = "rate_limited"
	KindUpstream      Kind = "upstream"
	KindParse         Kind = "parse"
)

// ProviderError describes why a provider produced no value.
type ProviderError struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MissingCredential reports that provider needs a credential that is not set.
// It wraps resolve.ErrMissingCredential so the chain can classify it.
func MissingCredential(provider string, key string) error {
	return &ProviderError{
		Provider: provider,
		Kind:     KindMisconfigured,
		Err:      fmt.Errorf("%w: %s", resolve.ErrMissingCredential, key),
	}
}

// ParseError wraps a decoding failure.
func ParseError(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindParse, Err: err}
}

// NewHTTPClient returns the client used for upstream calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Get performs a GET request and returns the body of a 2xx response.
// Any other status is a *ProviderError of kind KindStatus (or
// KindRateLimited for 429). Credentials in the URL never appear in errors.
func Get(ctx context.Context, client *http.Client, provider, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Kind: KindTransport, Err: fmt.Errorf("build request: %w", redactErr(err))}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json, text/csv, */*")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Kind: KindTransport, Err: redactErr(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ProviderError{Provider: provider, Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindStatus
		if resp.StatusCode == http.StatusTooManyRequests {
			kind = KindRateLimited
		}
		return nil, &ProviderError{Provider: provider, Kind: kind, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	return body, nil
}

// secretParams are query parameters whose values must never be logged.
var secretParams = []string{"apikey", "apiKey", "token", "key"}

// RedactURL masks credential query parameters in rawURL.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "***")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func redactErr(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: RedactURL(urlErr.URL), Err: urlErr.Err}
	}
	return err
}

// Soften converts status, rate-limit, upstream and parse failures into "no
// value" for adapters whose contract is to return nothing rather than fail.
// The failure is still logged at debug level. Transport failures pass through
// so outages stay visible to guards and metrics.
func Soften(ctx context.Context, err error) error {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return err
	}
	switch pe.Kind {
	case KindStatus, KindRateLimited, KindUpstream, KindParse:
		logging.FromContext(ctx).Debug("provider returned no usable data",
			slog.String("provider", pe.Provider),
			slog.String("kind", string(pe.Kind)),
			slog.Int("status", pe.StatusCode),
			slog.Any("error", pe.Err))
		return nil
	default:
		return err
	}
}
