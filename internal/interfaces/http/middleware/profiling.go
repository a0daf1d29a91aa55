package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/storesync/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling labels are added to requests.
	Enabled bool
	// SkipPaths are paths that don't need profiling labels.
	SkipPaths []string
}

// DefaultProfilingConfig returns default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health"},
	}
}

// Profiling returns profiling middleware with default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig runs the handler chain under Pyroscope labels for the
// route, the method and, on inventory webhooks, the category. Profiles can
// then be sliced per webhook category.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), extractProfilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func extractProfilingLabels(c *gin.Context) map[string]string {
	return map[string]string{
		telemetry.ProfilingLabelMethod:   c.Request.Method,
		telemetry.ProfilingLabelRoute:    c.FullPath(),
		telemetry.ProfilingLabelCategory: c.Param("category"),
	}
}
