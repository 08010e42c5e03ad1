package config

import (
	"errors"
	"fmt"
	"strings"

	pkgconfig "earnings-radar/pkg/config"
)

// StoreBackend selects the event store implementation.
type StoreBackend string

const (
	BackendJSONBin  StoreBackend = "jsonbin"
	BackendPostgres StoreBackend = "postgres"
	BackendRedis    StoreBackend = "redis"
	BackendMemory   StoreBackend = "memory"
)

// ErrUnknownBackend is returned for an unrecognised STORE_BACKEND value.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store configures the event store gateway.
type Store struct {
	Backend StoreBackend

	// JSONBin
	JSONBinBaseURL   string
	JSONBinBinID     string
	JSONBinMasterKey string

	// Postgres
	DatabaseURL string

	// Redis
	RedisURL string
	RedisKey string

	// MaxConflictRetries bounds optimistic-write retries for versioned backends.
	MaxConflictRetries int
}

// LoadStore reads store configuration from the environment.
func LoadStore() (Store, error) {
	s := Store{
		Backend:            StoreBackend(strings.ToLower(pkgconfig.GetEnvString("STORE_BACKEND", string(BackendJSONBin)))),
		JSONBinBaseURL:     strings.TrimRight(pkgconfig.GetEnvString("JSONBIN_BASE_URL", "https://api.jsonbin.io/v3"), "/"),
		JSONBinBinID:       pkgconfig.GetEnvString(string(KeyJSONBinBinID), ""),
		JSONBinMasterKey:   pkgconfig.GetEnvString(string(KeyJSONBinMasterKey), ""),
		DatabaseURL:        pkgconfig.GetEnvString("DATABASE_URL", ""),
		RedisURL:           pkgconfig.GetEnvString("REDIS_URL", ""),
		RedisKey:           pkgconfig.GetEnvString("REDIS_KEY", "earnings-radar:events"),
		MaxConflictRetries: pkgconfig.GetEnvInt("EVENTS_MAX_CONFLICT_RETRIES", 3),
	}
	if s.MaxConflictRetries < 1 {
		s.MaxConflictRetries = 1
	}

	switch s.Backend {
	case BackendJSONBin, BackendPostgres, BackendRedis, BackendMemory:
		return s, nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
}

// Configured reports whether the selected backend has the credentials it needs.
func (s Store) Configured() bool {
	switch s.Backend {
	case BackendJSONBin:
		return s.JSONBinBinID != "" && s.JSONBinMasterKey != ""
	case BackendPostgres:
		return s.DatabaseURL != ""
	case BackendRedis:
		return s.RedisURL != ""
	case BackendMemory:
		return true
	default:
		return false
	}
}
