package db

import (
	"context"
	"database/sql"
)

// EventsTable holds the event collection as a single JSONB document.
// The version column backs optimistic writes.
const EventsTable = "events_document"

// MigrateUp creates the schema. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS events_document (
    id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    payload    JSONB NOT NULL DEFAULT '[]'::jsonb,
    version    BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

// MigrateDown drops the schema. All stored events are lost.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS events_document`)
	return err
}
