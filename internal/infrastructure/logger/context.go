package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey is the context key for the request-scoped logger.
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for the request id.
	RequestIDKey contextKey = "request_id"
	// StoreIDKey is the context key for the resolved store id.
	StoreIDKey contextKey = "store_id"
	// CategoryKey is the context key for the webhook category being handled.
	CategoryKey contextKey = "webhook_category"
)

// WithContext attaches a logger to ctx.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and returns the enriched logger.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithStoreID stores the resolved store id and returns the enriched logger.
func WithStoreID(ctx context.Context, logger *zap.Logger, storeID int64) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, StoreIDKey, storeID)
	enriched := logger.With(zap.Int64("store_id", storeID))
	return WithContext(ctx, enriched), enriched
}

// WithCategory stores the webhook category and returns the enriched logger.
func WithCategory(ctx context.Context, logger *zap.Logger, category string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, CategoryKey, category)
	enriched := logger.With(zap.String("webhook_category", category))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID returns the request id from ctx, or "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// GetStoreID returns the store id from ctx, or 0.
func GetStoreID(ctx context.Context) int64 {
	if v, ok := ctx.Value(StoreIDKey).(int64); ok {
		return v
	}
	return 0
}

// GetCategory returns the webhook category from ctx, or "".
func GetCategory(ctx context.Context) string {
	if v, ok := ctx.Value(CategoryKey).(string); ok {
		return v
	}
	return ""
}

// GetTraceID returns the active span's trace id, or "".
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// GetSpanID returns the active span's span id, or "".
func GetSpanID(ctx context.Context) string {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.SpanID().String()
}

// ContextLogger logs with the correlation fields found in its context:
// trace and span ids, request id, store id and webhook category.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L returns a ContextLogger backed by the logger stored in ctx.
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger returns a ContextLogger backed by an explicit logger.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) enrichedLogger() *zap.Logger {
	fields := make([]zap.Field, 0, 5)
	if traceID := GetTraceID(cl.ctx); traceID != "" {
		fields = append(fields,
			zap.String("trace_id", traceID),
			zap.String("span_id", GetSpanID(cl.ctx)),
		)
	}
	if requestID := GetRequestID(cl.ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if storeID := GetStoreID(cl.ctx); storeID != 0 {
		fields = append(fields, zap.Int64("store_id", storeID))
	}
	if category := GetCategory(cl.ctx); category != "" {
		fields = append(fields, zap.String("webhook_category", category))
	}
	if len(fields) == 0 {
		return cl.logger
	}
	return cl.logger.With(fields...)
}

// With returns a ContextLogger with additional fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Debug(msg, fields...)
}

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Info(msg, fields...)
}

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Warn(msg, fields...)
}

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.enrichedLogger().Error(msg, fields...)
}

// Zap returns the enriched zap logger.
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enrichedLogger()
}
