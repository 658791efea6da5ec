// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services read them, and tests
// inject them without any of the three importing net/http.
package requestcontext

import (
	"context"
	"time"

	id "tranchor/pkg/domain"
)

type (
	participantIDKey struct{}
	requestIDKey     struct{}
	requestTimeKey   struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyParticipantID = participantIDKey{}
	ContextKeyRequestID     = requestIDKey{}
	ContextKeyRequestTime   = requestTimeKey{}
)

// ParticipantID retrieves the authenticated participant from the context.
// Returns the zero value if not set.
func ParticipantID(ctx context.Context) id.ParticipantID {
	if p, ok := ctx.Value(ContextKeyParticipantID).(id.ParticipantID); ok {
		return p
	}
	return ""
}

// WithParticipantID injects a participant identity into the context.
func WithParticipantID(ctx context.Context, p id.ParticipantID) context.Context {
	return context.WithValue(ctx, ContextKeyParticipantID, p)
}

// RequestID retrieves the request correlation id from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
