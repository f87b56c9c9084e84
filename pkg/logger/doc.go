// Package logger provides the structured logging interface used across the
// grade watcher.
//
// It wraps zerolog with a small facade supporting:
// - Log levels (Debug, Info, Warn, Error, Fatal)
// - Structured fields, either bound with WithField(s) or passed per call
// - Colored console output, optionally duplicated to a log file
// - Timestamps rendered in the configured log timezone
// - A global logger instance for command wiring
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.Info("Bot started")
//	logger.WithField("cycle_id", id).Info("Cycle completed")
//
// Components receive a Logger explicitly and tests pass NewTestLogger or
// NewNopLogger.
package logger
