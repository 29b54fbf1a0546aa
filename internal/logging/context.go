package logging

import (
	"context"
	"log/slog"

	"github.com/dckiller51/trueachievements/internal/services"
)

// ContextFields extracts standardized logging attributes from the context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	attrs := make([]Attr, 0, 2)
	if id, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldCorrelationID, id))
	}
	if trigger, ok := services.TriggerFromContext(ctx); ok {
		attrs = append(attrs, String(FieldTrigger, trigger))
	}
	return attrs
}

// WithContext returns a logger pre-populated with any correlation fields the
// context carries. A nil logger yields a no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
