package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ForCycle returns a logger bound to one run cycle
func ForCycle(base Logger, cycleID string) Logger {
	return base.WithField("cycle_id", cycleID)
}

// LogWebhook logs the outcome of one webhook delivery
func LogWebhook(l Logger, kind string, statusCode int, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"kind":        kind,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case err != nil:
		l.WithError(err).WarnWithFields("Webhook delivery failed", fields)
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("Webhook delivered", fields)
	default:
		l.WarnWithFields("Webhook rejected the payload", fields)
	}
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, settings map[string]interface{}) {
	child := l.WithField("component", component)
	if len(settings) > 0 {
		child = child.WithFields(settings)
	}
	child.Info("Component started")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
