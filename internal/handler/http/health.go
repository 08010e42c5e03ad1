// Package http wires the earnings-radar HTTP surface: health probes,
// metrics and the shared middleware stack. Feature handlers live in the
// event, earnings and news subpackages.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"earnings-radar/internal/config"
	"earnings-radar/internal/repository"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp string    `json:"timestamp"`
	Version   string    `json:"version"`
	Env       EnvReport `json:"env"`
}

// EnvReport reports which credentials are present. Values are never echoed.
type EnvReport struct {
	HasFMPKey          bool   `json:"hasFmpKey"`
	HasPolygonKey      bool   `json:"hasPolygonKey"`
	HasAlphaVantageKey bool   `json:"hasAlphaVantageKey"`
	HasFinnhubKey      bool   `json:"hasFinnhubKey"`
	HasJSONBinID       bool   `json:"hasJsonBinId"`
	HasJSONBinKey      bool   `json:"hasJsonBinKey"`
	StoreBackend       string `json:"storeBackend"`
	StoreConfigured    bool   `json:"storeConfigured"`
	DebugEnabled       bool   `json:"debugEnabled"`
}

// HealthHandler serves the configuration summary. It always answers 200;
// readiness is ReadyHandler's job.
type HealthHandler struct {
	Providers    config.Providers
	Store        config.Store
	DebugEnabled bool
	Version      string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Version:   h.Version,
		Env: EnvReport{
			HasFMPKey:          h.Providers.Has(config.KeyFMP),
			HasPolygonKey:      h.Providers.Has(config.KeyPolygon),
			HasAlphaVantageKey: h.Providers.Has(config.KeyAlphaVantage),
			HasFinnhubKey:      h.Providers.Has(config.KeyFinnhub),
			HasJSONBinID:       h.Store.JSONBinBinID != "",
			HasJSONBinKey:      h.Store.JSONBinMasterKey != "",
			StoreBackend:       string(h.Store.Backend),
			StoreConfigured:    h.Store.Configured(),
			DebugEnabled:       h.DebugEnabled,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

// ReadyHandler answers readiness probes by reading the event store.
// An unconfigured store still counts as ready because the earnings and
// news endpoints do not depend on it.
type ReadyHandler struct {
	Store repository.EventStore
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Store == nil {
		http.Error(w, "store not initialised", http.StatusServiceUnavailable)
		return
	}

	if _, err := h.Store.ReadLatest(ctx); err != nil && !errors.Is(err, repository.ErrStoreNotConfigured) {
		slog.Warn("ready: store read failed", slog.Any("error", err))
		http.Error(w, "store not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Error("ready: failed to write response", slog.Any("error", err))
	}
}

// LiveHandler handles liveness probes.
type LiveHandler struct{}

// ServeHTTP always returns 200 while the process can respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Error("alive: failed to write response", slog.Any("error", err))
	}
}
