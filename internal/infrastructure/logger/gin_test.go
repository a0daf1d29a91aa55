package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger, opts ...GinOption) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-abc")
		c.Next()
	})
	r.Use(GinMiddleware(l, opts...))
	return r
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"ok", http.StatusOK, zapcore.InfoLevel},
		{"client error", http.StatusBadRequest, zapcore.WarnLevel},
		{"server error", http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			r := newTestRouter(zap.New(core))
			r.POST("/webhooks/sales", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/sales", nil))

			entries := recorded.FilterMessage("HTTP Request").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, "req-abc", fields["request_id"])
			assert.Equal(t, "/webhooks/sales", fields["path"])
		})
	}
}

func TestGinMiddleware_PropagatesToRequestContext(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/probe", func(c *gin.Context) {
		assert.Equal(t, "req-abc", GetRequestID(c.Request.Context()))
		L(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe", nil))

	entries := recorded.FilterMessage("inside handler").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-abc", entries[0].ContextMap()["request_id"])
}

func TestGinMiddleware_SkipPaths(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	r := newTestRouter(zap.New(core), WithSkipPaths("/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Zero(t, recorded.FilterMessage("HTTP Request").Len())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.NotNil(t, GetGinLogger(c))

	l := zap.NewExample()
	c.Set("logger", l)
	assert.Same(t, l, GetGinLogger(c))
}
