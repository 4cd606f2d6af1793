// Package audit emits structured audit events for security-relevant actions:
// logins, role changes, budget allocations, approval decisions.
package audit

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"teampulse.org/internal/auth"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// logger is a dedicated JSON logger so audit lines stay machine-parseable
// regardless of the app log format.
var logger = newLogger()

func newLogger() *log.Logger {
	l := log.New()
	l.SetFormatter(&log.JSONFormatter{})
	return l
}

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// requestIDFromContext extracts the audit request id from context if present.
func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit log entry enriched with request and user context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := logger.WithFields(log.Fields{
		"type":  "audit",
		"event": event,
	})
	if rid := requestIDFromContext(ctx); rid != "" {
		entry = entry.WithField("request_id", rid)
	}
	if userID, ok := auth.UserIDFromContext(ctx); ok {
		entry = entry.WithField("user_id", userID)
	}
	for k, v := range fields {
		entry = entry.WithField(k, v)
	}
	entry.Info("audit event")
	return nil
}
