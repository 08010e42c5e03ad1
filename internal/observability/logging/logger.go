// Package logging provides structured logging utilities using the standard library's log/slog package.
// It offers helper functions for creating loggers with consistent configuration and context propagation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"earnings-radar/internal/handler/http/requestid"
)

// Level resolves the log level from the environment.
// LOG_LEVEL accepts debug, info, warn and error (default info).
// DEBUG_LOGS=true forces debug regardless of LOG_LEVEL.
func Level() slog.Level {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("DEBUG_LOGS")), "true") {
		return slog.LevelDebug
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new structured logger with JSON output on stdout.
// LOG_FORMAT=text switches to the human-readable text handler for local development.
func NewLogger() *slog.Logger {
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		return NewTextLogger(os.Stdout)
	}
	return NewJSONLogger(os.Stdout)
}

// NewJSONLogger creates a JSON logger writing to w at the environment's level.
func NewJSONLogger(w io.Writer) *slog.Logger {
	logLevel := Level()
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
		// Add source code location when debugging
		AddSource: logLevel <= slog.LevelDebug,
	}))
}

// NewTextLogger creates a text logger writing to w at the environment's level.
func NewTextLogger(w io.Writer) *slog.Logger {
	logLevel := Level()
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel <= slog.LevelDebug,
	}))
}

// WithRequestID returns a new logger that includes the request ID from the context.
// This enables request tracing across log entries.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
// The request ID, when present, is attached to the returned logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return WithRequestID(ctx, slog.Default())
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
