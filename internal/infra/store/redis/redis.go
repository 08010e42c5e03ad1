// Package redis stores the event collection as a JSON string key with a
// companion version counter. Conditional writes use WATCH/MULTI.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/repository"

	goredis "github.com/redis/go-redis/v9"
)

// Store is the redis-backed event store.
type Store struct {
	client     goredis.UniversalClient
	key        string
	versionKey string
}

var _ repository.VersionedEventStore = (*Store)(nil)

// New creates a store over client using key for the document.
func New(client goredis.UniversalClient, key string) *Store {
	return &Store{client: client, key: key, versionKey: key + ":version"}
}

// Connect parses a redis:// URL (or a bare host:port) and pings the server.
func Connect(ctx context.Context, rawURL string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(rawURL)
	if err != nil {
		opt = &goredis.Options{Addr: rawURL}
	}
	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// ReadLatest implements repository.EventStore.
func (s *Store) ReadLatest(ctx context.Context) ([]entity.StoredEvent, error) {
	events, _, err := s.ReadVersioned(ctx)
	return events, err
}

// ReadVersioned implements repository.VersionedEventStore.
func (s *Store) ReadVersioned(ctx context.Context) ([]entity.StoredEvent, int64, error) {
	vals, err := s.client.MGet(ctx, s.key, s.versionKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("read events: %w", err)
	}
	return decode(vals[0], vals[1])
}

// OverwriteAll implements repository.EventStore.
func (s *Store) OverwriteAll(ctx context.Context, events []entity.StoredEvent) error {
	payload, err := encode(events)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.key, payload, 0)
		pipe.Incr(ctx, s.versionKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

// OverwriteIfVersion implements repository.VersionedEventStore.
func (s *Store) OverwriteIfVersion(ctx context.Context, events []entity.StoredEvent, version int64) error {
	payload, err := encode(events)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, s.versionKey).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if current != version {
			return repository.ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, s.key, payload, 0)
			pipe.Incr(ctx, s.versionKey)
			return nil
		})
		return err
	}, s.key, s.versionKey)

	switch {
	case errors.Is(err, goredis.TxFailedErr), errors.Is(err, repository.ErrVersionConflict):
		return repository.ErrVersionConflict
	case err != nil:
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

func decode(rawPayload, rawVersion interface{}) ([]entity.StoredEvent, int64, error) {
	var version int64
	if v, ok := rawVersion.(string); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("decode version: %w", err)
		}
		version = n
	}

	events := []entity.StoredEvent{}
	if p, ok := rawPayload.(string); ok && p != "" {
		if err := json.Unmarshal([]byte(p), &events); err != nil {
			return nil, 0, fmt.Errorf("decode events: %w", err)
		}
	}
	return events, version, nil
}

func encode(events []entity.StoredEvent) (string, error) {
	if events == nil {
		events = []entity.StoredEvent{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("encode events: %w", err)
	}
	return string(b), nil
}
