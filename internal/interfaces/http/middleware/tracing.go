package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/storesync/backend/internal/infrastructure/telemetry"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "storesync",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns the otelgin middleware. Span names follow the
// format "HTTP METHOD route_pattern" (e.g. "POST /inventory-webhooks/:category").
// Use TracingAttributeInjector to tag the span with request attributes.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector copies request attributes onto the active span.
// Place it after TracingWithConfig and RequestID.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
		c.Next()
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if category := c.Param("category"); category != "" {
		span.SetAttributes(attribute.String(telemetry.SpanAttrCategory, category))
	}
}

// SpanErrorMarker marks the server span as failed for 5xx responses and
// records the status code for every 4xx/5xx. Place it after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", statusCode))

		switch {
		case statusCode >= http.StatusInternalServerError:
			span.SetStatus(codes.Error, http.StatusText(statusCode))
		case statusCode == http.StatusForbidden:
			// Rejected signatures are worth spotting in trace search.
			span.SetStatus(codes.Error, "Forbidden")
		}
	}
}
