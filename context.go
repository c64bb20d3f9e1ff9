package weft

import (
	"context"

	"github.com/weft-ai/weft/observability"
)

type contextKey int

const (
	sessionContextKey contextKey = iota
	spanContextKey
)

// WithSession returns a context carrying the given session id. Execute and
// Publish resolve it for messages whose envelopes carry no session of their
// own, which keeps trace and journal correlation intact across nested calls.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey, sessionID)
}

// SessionFromContext returns the session id carried by ctx, or "".
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey).(string)
	return id
}

func withSpan(ctx context.Context, span observability.SpanContext) context.Context {
	return context.WithValue(ctx, spanContextKey, span)
}

// SpanFromContext returns the current span, if any. Command handlers receive
// a context carrying their command's span, so spans opened inside a handler
// nest under it.
func SpanFromContext(ctx context.Context) (observability.SpanContext, bool) {
	span, ok := ctx.Value(spanContextKey).(observability.SpanContext)
	return span, ok
}
