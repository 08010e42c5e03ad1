// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats
//   - Request ID propagation
//   - Context-aware logging
//   - LOG_LEVEL and DEBUG_LOGS driven levels
//
// Provider-level traces (which upstream was tried, why it was skipped) are
// emitted at debug level and are therefore only visible with DEBUG_LOGS=true
// or LOG_LEVEL=debug.
//
// Example usage:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//	logger.Info("application started", slog.String("version", "1.0"))
package logging
