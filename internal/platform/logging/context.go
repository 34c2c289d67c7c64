package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// idKey stores raw IDs next to the logger so outbound clients can forward them.
type idKey string

const (
	requestIDKey     idKey = "request_id"
	correlationIDKey idKey = "correlation_id"
)

// Attribute keys shared by every logger derived from a context.
const (
	KeyRequestID     = "request_id"
	KeyTraceID       = "trace_id"
	KeyCorrelationID = "correlation_id"
	KeyShow          = "show"
	KeyGeneration    = "generation"
)

var defaultLogger = slog.Default()

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// FromContextOr returns the logger stored in ctx, or fallback when ctx carries none.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}

	return fallback
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With enriches the context logger with args (slog key/value pairs or Attrs).
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}

// WithRequestID records the request ID on ctx and tags the context logger with it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return With(context.WithValue(ctx, requestIDKey, requestID), slog.String(KeyRequestID, requestID))
}

// RequestID returns the request ID recorded by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithTraceID adds a trace ID to the logger in context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return With(ctx, slog.String(KeyTraceID, traceID))
}

// WithCorrelationID records the correlation ID on ctx and tags the context logger with it.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return With(context.WithValue(ctx, correlationIDKey, correlationID), slog.String(KeyCorrelationID, correlationID))
}

// CorrelationID returns the correlation ID recorded by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

func stringValue(ctx context.Context, key idKey) string {
	if ctx == nil {
		return ""
	}

	v, _ := ctx.Value(key).(string)

	return v
}

// WithFetch tags the logger with the show being fetched and its request generation.
func WithFetch(ctx context.Context, show string, generation uint64) context.Context {
	return With(ctx, slog.String(KeyShow, show), slog.Uint64(KeyGeneration, generation))
}

// SetDefault sets the default logger used when no logger is in context.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
