package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/storesync/backend/internal/infrastructure/telemetry"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})

	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test-service"}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_WebhookRouteAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing())
	router.Use(TracingAttributeInjector())
	router.POST("/inventory-webhooks/:category", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	})

	req := httptest.NewRequest(http.MethodPost, "/inventory-webhooks/sales", nil)
	req.Header.Set(RequestIDHeader, "test-request-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	attrs := spanAttrs(findSpan(t, sr, "POST /inventory-webhooks/:category"))
	assert.Equal(t, "test-request-id-123", attrs["request_id"].AsString())
	assert.Equal(t, "sales", attrs[attribute.Key(telemetry.SpanAttrCategory)].AsString())
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus codes.Code
		wantAttr   bool
	}{
		{"success", http.StatusOK, codes.Unset, false},
		{"bad request", http.StatusBadRequest, codes.Unset, true},
		{"forbidden", http.StatusForbidden, codes.Error, true},
		{"not found", http.StatusNotFound, codes.Unset, true},
		{"internal", http.StatusInternalServerError, codes.Error, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(Tracing())
			router.Use(SpanErrorMarker())
			router.GET("/test", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			span := findSpan(t, sr, "GET /test")
			assert.Equal(t, tt.wantStatus, span.Status().Code)
			if tt.wantAttr {
				assert.Equal(t, int64(tt.status), spanAttrs(span)["http.status_code"].AsInt64())
			}
		})
	}
}

func TestSpanErrorMarker_WithNoSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.Equal(t, "storesync", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
}
