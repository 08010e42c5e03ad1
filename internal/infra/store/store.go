// Package store selects and builds the event store backend.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/db"
	"earnings-radar/internal/infra/store/jsonbin"
	"earnings-radar/internal/infra/store/memory"
	"earnings-radar/internal/infra/store/postgres"
	redisstore "earnings-radar/internal/infra/store/redis"
	"earnings-radar/internal/repository"
)

// Unconfigured is used when the selected backend lacks credentials.
// Every call fails with repository.ErrStoreNotConfigured.
type Unconfigured struct{}

var _ repository.EventStore = Unconfigured{}

// ReadLatest implements repository.EventStore.
func (Unconfigured) ReadLatest(context.Context) ([]entity.StoredEvent, error) {
	return nil, repository.ErrStoreNotConfigured
}

// OverwriteAll implements repository.EventStore.
func (Unconfigured) OverwriteAll(context.Context, []entity.StoredEvent) error {
	return repository.ErrStoreNotConfigured
}

// Opened is a ready store and the function releasing its connections.
type Opened struct {
	Store   repository.EventStore
	Backend config.StoreBackend
	Close   func() error
}

// Open builds the backend named by cfg. Missing credentials yield an
// Unconfigured store rather than an error so the rest of the API can run.
// Connection failures are returned.
func Open(ctx context.Context, cfg config.Store, timeout time.Duration) (Opened, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendJSONBin, config.BackendPostgres, config.BackendRedis, config.BackendMemory:
	default:
		return Opened{}, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}

	if !cfg.Configured() {
		slog.Error("event store missing credentials", slog.String("backend", string(cfg.Backend)))
		return Opened{Store: Unconfigured{}, Backend: cfg.Backend, Close: noop}, nil
	}

	var (
		s       repository.EventStore
		closeFn = noop
	)
	switch cfg.Backend {
	case config.BackendJSONBin:
		s = jsonbin.New(jsonbin.Config{
			BaseURL:   cfg.JSONBinBaseURL,
			BinID:     cfg.JSONBinBinID,
			MasterKey: cfg.JSONBinMasterKey,
			Timeout:   timeout,
		})
	case config.BackendPostgres:
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return Opened{}, err
		}
		if err := db.MigrateUp(ctx, conn); err != nil {
			_ = conn.Close()
			return Opened{}, fmt.Errorf("migrate: %w", err)
		}
		s, closeFn = postgres.New(conn), conn.Close
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return Opened{}, err
		}
		s, closeFn = redisstore.New(client, cfg.RedisKey), client.Close
	case config.BackendMemory:
		s = memory.New()
	}

	slog.Info("event store ready", slog.String("backend", string(cfg.Backend)))
	return Opened{Store: Instrument(string(cfg.Backend), s), Backend: cfg.Backend, Close: closeFn}, nil
}
