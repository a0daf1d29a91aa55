package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ginLoggerKey is the gin context key holding the request-scoped logger.
const ginLoggerKey = "logger"

// GinOption configures GinMiddleware.
type GinOption func(*ginOptions)

type ginOptions struct {
	skipPaths map[string]struct{}
}

// WithSkipPaths suppresses access logs for the given paths (health probes).
func WithSkipPaths(paths ...string) GinOption {
	return func(o *ginOptions) {
		for _, p := range paths {
			o.skipPaths[p] = struct{}{}
		}
	}
}

// GinMiddleware logs every request and attaches a request-scoped logger to
// both the gin context and the request context, so services reached through
// c.Request.Context() can use L(ctx).
func GinMiddleware(base *zap.Logger, opts ...GinOption) gin.HandlerFunc {
	o := &ginOptions{skipPaths: make(map[string]struct{})}
	for _, opt := range opts {
		opt(o)
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetString("request_id")
		ctx, reqLogger := WithRequestID(c.Request.Context(), base.With(
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(ginLoggerKey, reqLogger)

		c.Next()

		if _, skip := o.skipPaths[path]; skip {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if storeID := GetStoreID(c.Request.Context()); storeID != 0 {
			fields = append(fields, zap.Int64("store_id", storeID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		const msg = "HTTP Request"
		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error(msg, fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn(msg, fields...)
		default:
			reqLogger.Info(msg, fields...)
		}
	}
}

// Recovery turns panics into a 500 response and logs the stack.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				base.Error("Panic recovered",
					zap.String("request_id", c.GetString("request_id")),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "An internal error occurred",
					},
				})
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger, or a no-op logger.
func GetGinLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ginLoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
