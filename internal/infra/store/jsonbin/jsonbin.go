// Package jsonbin stores the event collection in a single JSONBin.io bin.
//
// JSONBin offers no conditional write, so concurrent Add requests race and
// the last writer wins.
package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/observability/logging"
	"earnings-radar/internal/repository"
	"earnings-radar/internal/resilience/circuitbreaker"
	"earnings-radar/internal/resilience/retry"
)

const (
	masterKeyHeader = "X-Master-Key"
	maxBodyBytes    = 8 << 20
)

// Config configures the JSONBin gateway.
type Config struct {
	BaseURL   string
	BinID     string
	MasterKey string
	Timeout   time.Duration
}

// Store is the JSONBin-backed event store.
type Store struct {
	cfg     Config
	client  *http.Client
	retry   retry.Config
	breaker *circuitbreaker.CircuitBreaker
}

var _ repository.EventStore = (*Store)(nil)

// New creates a JSONBin gateway.
func New(cfg Config) *Store {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Store{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		retry:   retry.StoreHTTPConfig(),
		breaker: circuitbreaker.New(circuitbreaker.StoreConfig()),
	}
}

// latestResponse is the envelope returned by GET /b/{id}/latest. The record
// is either the events array itself or an object wrapping it in "data".
type latestResponse struct {
	Record json.RawMessage `json:"record"`
}

// ReadLatest implements repository.EventStore.
func (s *Store) ReadLatest(ctx context.Context) ([]entity.StoredEvent, error) {
	var body []byte
	err := s.do(ctx, func() error {
		b, err := s.request(ctx, http.MethodGet, s.binURL()+"/latest", nil)
		body = b
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	events, err := decodeRecord(body)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	logging.FromContext(ctx).Debug("events loaded", slog.Int("count", len(events)))
	return events, nil
}

// OverwriteAll implements repository.EventStore.
func (s *Store) OverwriteAll(ctx context.Context, events []entity.StoredEvent) error {
	if events == nil {
		events = []entity.StoredEvent{}
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	err = s.do(ctx, func() error {
		_, err := s.request(ctx, http.MethodPut, s.binURL(), payload)
		return err
	})
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	logging.FromContext(ctx).Debug("events saved", slog.Int("count", len(events)))
	return nil
}

func (s *Store) binURL() string {
	return s.cfg.BaseURL + "/b/" + s.cfg.BinID
}

// do runs fn through the breaker with retries on transient failures.
func (s *Store) do(ctx context.Context, fn func() error) error {
	return s.breaker.Do(func() error {
		return retry.WithBackoff(ctx, s.retry, fn)
	})
}

func (s *Store) request(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(masterKeyHeader, s.cfg.MasterKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, retry.NewHTTPError(resp, http.StatusText(resp.StatusCode))
	}
	return b, nil
}

// decodeRecord accepts both record shapes. A record that is neither an
// array nor an object with a "data" array is an empty collection. An array
// that does not decode is an error: treating it as empty would make the
// next write drop every stored event.
func decodeRecord(body []byte) ([]entity.StoredEvent, error) {
	var env latestResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	if isJSONArray(env.Record) {
		events := []entity.StoredEvent{}
		if err := json.Unmarshal(env.Record, &events); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		return events, nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(env.Record, &wrapped); err != nil || !isJSONArray(wrapped.Data) {
		return []entity.StoredEvent{}, nil
	}
	events := []entity.StoredEvent{}
	if err := json.Unmarshal(wrapped.Data, &events); err != nil {
		return nil, fmt.Errorf("decode record data: %w", err)
	}
	return events, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
