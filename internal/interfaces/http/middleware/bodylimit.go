package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// BodyLimitKey is the gin context key holding the active body limit
const BodyLimitKey = "body_limit"

// BodyLimit rejects requests whose body exceeds maxBytes. A declared
// Content-Length over the limit is answered 413 before the handler runs;
// chunked bodies are cut off by http.MaxBytesReader while being read.
// The limit is stored on the context for handlers that read raw bodies.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(BodyLimitKey, maxBytes)
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// GetBodyLimit returns the limit set by BodyLimit, or fallback when the
// route has none.
func GetBodyLimit(c *gin.Context, fallback int64) int64 {
	if v, ok := c.Get(BodyLimitKey); ok {
		if limit, ok := v.(int64); ok && limit > 0 {
			return limit
		}
	}
	return fallback
}
