// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. The gateway middleware sets them; the transport
// layer reads them when stamping outgoing backend calls, so one inbound
// navigation and every backend call it triggers share a correlation ID.
package requestcontext

import "context"

type requestIDKey struct{}

// ContextKeyRequestID is exported for tests that need context.WithValue.
var ContextKeyRequestID = requestIDKey{}

// RequestID retrieves the correlation ID from the context; empty if unset.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}
