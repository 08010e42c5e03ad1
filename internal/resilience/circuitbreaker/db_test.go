package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectDoc = `SELECT payload, version FROM events_document WHERE id = 1`

func newMockDB(t *testing.T, cfg Config) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDBWithConfig(db, cfg), mock
}

func dbTestConfig(name string) Config {
	cfg := DBConfig()
	cfg.Name = name
	cfg.Timeout = 50 * time.Millisecond
	return cfg
}

func TestDB_QueryOneScansFirstRow(t *testing.T) {
	d, mock := newMockDB(t, dbTestConfig("db-scan"))
	mock.ExpectQuery("SELECT payload, version FROM events_document").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "version"}).AddRow([]byte(`[{"symbol":"AAPL"}]`), int64(4)))

	var (
		payload []byte
		version int64
	)
	require.NoError(t, d.QueryOne(context.Background(), selectDoc, nil, &payload, &version))

	assert.JSONEq(t, `[{"symbol":"AAPL"}]`, string(payload))
	assert.Equal(t, int64(4), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_EmptyTableDoesNotTrip(t *testing.T) {
	d, mock := newMockDB(t, dbTestConfig("db-empty"))
	for range 6 {
		mock.ExpectQuery("SELECT payload").WillReturnRows(sqlmock.NewRows([]string{"payload", "version"}))
	}

	var payload []byte
	var version int64
	for range 6 {
		err := d.QueryOne(context.Background(), selectDoc, nil, &payload, &version)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	}

	assert.Equal(t, gobreaker.StateClosed, d.State())
}

func TestDB_ExecReturnsResult(t *testing.T) {
	d, mock := newMockDB(t, dbTestConfig("db-exec"))
	mock.ExpectExec("UPDATE events_document").
		WithArgs([]byte(`[]`), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := d.Exec(context.Background(),
		`UPDATE events_document SET payload = $1, version = version + 1 WHERE id = 1 AND version = $2`,
		[]byte(`[]`), int64(3))
	require.NoError(t, err)

	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDB_OpensAfterFiveFailuresThenRecovers(t *testing.T) {
	d, mock := newMockDB(t, dbTestConfig("db-trip"))
	down := errors.New("connection refused")
	for range 5 {
		mock.ExpectExec("INSERT INTO events_document").WillReturnError(down)
	}

	for range 5 {
		_, err := d.Exec(context.Background(), `INSERT INTO events_document (id) VALUES (1)`)
		assert.ErrorIs(t, err, down)
	}
	require.Equal(t, gobreaker.StateOpen, d.State())

	// rejected without reaching the driver
	_, err := d.Exec(context.Background(), `INSERT INTO events_document (id) VALUES (1)`)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.NoError(t, mock.ExpectationsWereMet())

	time.Sleep(80 * time.Millisecond)
	mock.ExpectExec("INSERT INTO events_document").WillReturnResult(sqlmock.NewResult(1, 1))
	_, err = d.Exec(context.Background(), `INSERT INTO events_document (id) VALUES (1)`)
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateHalfOpen, d.State(), "three probes are needed to close")
}

func TestDB_ScanErrorCounts(t *testing.T) {
	d, mock := newMockDB(t, dbTestConfig("db-scanerr"))
	for range 5 {
		mock.ExpectQuery("SELECT payload").
			WillReturnRows(sqlmock.NewRows([]string{"payload", "version"}).AddRow([]byte(`[]`), "not-a-number"))
	}

	var payload []byte
	var version int64
	for range 5 {
		assert.Error(t, d.QueryOne(context.Background(), selectDoc, nil, &payload, &version))
	}

	assert.Equal(t, gobreaker.StateOpen, d.State())
}

func TestDBConfig(t *testing.T) {
	cfg := DBConfig()

	assert.Equal(t, "event-db", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 1.0, cfg.FailureThreshold)
	assert.True(t, cfg.IsSuccessful(nil))
	assert.True(t, cfg.IsSuccessful(sql.ErrNoRows))
	assert.True(t, cfg.IsSuccessful(context.Canceled))
	assert.False(t, cfg.IsSuccessful(errors.New("timeout")))
}
