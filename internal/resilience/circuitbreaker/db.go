package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// DBConfig opens the event database breaker after five straight failures
// and re-probes with up to three calls after 30s.
func DBConfig() Config {
	return Config{
		Name:             "event-db",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
		// an empty table and a caller giving up are not outages
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, sql.ErrNoRows) ||
				errors.Is(err, context.Canceled)
		},
	}
}

// DB runs the statements of the postgres event store behind a breaker.
type DB struct {
	cb *CircuitBreaker
	db *sql.DB
}

// NewDB guards db with DBConfig.
func NewDB(db *sql.DB) *DB {
	return NewDBWithConfig(db, DBConfig())
}

// NewDBWithConfig guards db with cfg.
func NewDBWithConfig(db *sql.DB, cfg Config) *DB {
	return &DB{cb: New(cfg), db: db}
}

// Exec runs a statement.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := d.cb.Execute(func() (interface{}, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(sql.Result), nil
}

// QueryOne scans the first row of query into dest. Scanning happens inside
// the breaker because a dropped connection may only surface there. It
// returns sql.ErrNoRows when nothing matched.
func (d *DB) QueryOne(ctx context.Context, query string, args []any, dest ...any) error {
	return d.cb.Do(func() error {
		rows, err := d.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return sql.ErrNoRows
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		return rows.Err()
	})
}

// State returns the breaker state.
func (d *DB) State() gobreaker.State {
	return d.cb.State()
}
