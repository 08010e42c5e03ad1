package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"earnings-radar/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		debugLogs string
		expected  slog.Level
	}{
		{name: "default log level (info)", expected: slog.LevelInfo},
		{name: "debug log level", logLevel: "debug", expected: slog.LevelDebug},
		{name: "upper case is accepted", logLevel: "WARN", expected: slog.LevelWarn},
		{name: "error log level", logLevel: "error", expected: slog.LevelError},
		{name: "invalid log level defaults to info", logLevel: "invalid", expected: slog.LevelInfo},
		{name: "DEBUG_LOGS forces debug", logLevel: "error", debugLogs: "true", expected: slog.LevelDebug},
		{name: "DEBUG_LOGS false is ignored", debugLogs: "false", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)
			t.Setenv("DEBUG_LOGS", tt.debugLogs)

			assert.Equal(t, tt.expected, Level())
		})
	}
}

func TestNewJSONLogger_FiltersDebugByDefault(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG_LOGS", "")

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf)

	logger.Debug("provider trace")
	logger.Info("this should appear")

	output := buf.String()
	assert.NotContains(t, output, "provider trace")
	assert.Contains(t, output, "this should appear")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be valid JSON")
	assert.Equal(t, "INFO", entry["level"])
}

func TestNewJSONLogger_DebugLogsEnablesProviderTrace(t *testing.T) {
	t.Setenv("DEBUG_LOGS", "true")

	var buf bytes.Buffer
	NewJSONLogger(&buf).Debug("provider trace", slog.String("provider", "FMP"))

	assert.Contains(t, buf.String(), "provider trace")
	assert.Contains(t, buf.String(), `"provider":"FMP"`)
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	NewTextLogger(&buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := requestid.WithRequestID(context.Background(), "550e8400-e29b-41d4-a716-446655440000")

	WithRequestID(ctx, base).Info("test message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", entry["request_id"])
}

func TestWithRequestID_EmptyRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	WithRequestID(context.Background(), base).Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestFromContext(t *testing.T) {
	t.Run("with logger in context", func(t *testing.T) {
		logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
		ctx := WithLogger(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("without logger in context", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("with invalid value in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), loggerContextKey, "not a logger")
		assert.Equal(t, slog.Default(), FromContext(ctx))
	})
}
