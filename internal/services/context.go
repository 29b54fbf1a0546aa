package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	triggerKey   contextKey = "trigger"
)

// WithRequestID annotates context with a correlation identifier so every log
// line emitted during one refresh cycle can be grouped.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTrigger annotates context with the source that caused a refresh cycle
// (interval, now-playing change, manual request).
func WithTrigger(ctx context.Context, trigger string) context.Context {
	if trigger == "" {
		return ctx
	}
	return context.WithValue(ctx, triggerKey, trigger)
}

// TriggerFromContext returns the refresh trigger source if present.
func TriggerFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(triggerKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
