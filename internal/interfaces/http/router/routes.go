package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/storesync/backend/docs"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/telemetry"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
)

// Route paths
const (
	HealthPath             = "/health"
	InventoryWebhookPrefix = "/inventory-webhooks"
	StorefrontWebhookPath  = "/storefront-webhooks"
	InventoryAuthPrefix    = "/auth/inventory"
	SwaggerPath            = "/swagger/*any"
)

// Handlers groups every HTTP handler of the server
type Handlers struct {
	InventoryWebhook  *handler.InventoryWebhookHandler
	StorefrontWebhook *handler.StorefrontWebhookHandler
	OAuth             *handler.OAuthHandler
	Health            *handler.HealthHandler
}

// EngineConfig configures the global middleware chain
type EngineConfig struct {
	Logger           *zap.Logger
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	MeterProvider    *telemetry.MeterProvider
	Security         middleware.SecurityConfig
	// Swagger gates the API documentation; the routes answer 404 unless enabled.
	Swagger middleware.SwaggerConfig
	// MaxBodySize caps webhook bodies; 0 uses handler.MaxWebhookPayloadSize.
	MaxBodySize int64
}

// NewEngine builds the gin engine with middleware and all routes
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = handler.MaxWebhookPayloadSize
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log, logger.WithSkipPaths(HealthPath)),
		middleware.SecureWithConfig(cfg.Security),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.TracingEnabled,
		}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.MeterProvider),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   cfg.ProfilingEnabled,
			SkipPaths: []string{HealthPath},
		}),
	)

	r := NewRouter(engine)
	r.Register(NewDomainGroup("health", "").GET(HealthPath, h.Health.Health))

	r.Register(NewDomainGroup("inventory-webhooks", InventoryWebhookPrefix).
		Use(middleware.BodyLimit(maxBody)).
		POST("/:category", h.InventoryWebhook.Receive))

	r.Register(NewDomainGroup("storefront-webhooks", StorefrontWebhookPath).
		Use(middleware.BodyLimit(maxBody)).
		POST("/sales", h.StorefrontWebhook.Receive))

	r.Register(NewDomainGroup("inventory-auth", InventoryAuthPrefix).
		GET("", h.OAuth.Authorize).
		GET("/callback", h.OAuth.Callback))

	engine.GET(SwaggerPath,
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.Setup()
	return engine
}
