package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	syncapp "github.com/storesync/backend/internal/application/storesync"
	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/auth"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/ecwid"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/persistence"
	"github.com/storesync/backend/internal/infrastructure/storage"
	"github.com/storesync/backend/internal/infrastructure/telemetry"
	"github.com/storesync/backend/internal/infrastructure/zoho"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
	"github.com/storesync/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//go:generate swag init --dir ../.. --generalInfo cmd/server/main.go --output ../../docs --outputTypes go --parseInternal

//	@title			StoreSync API
//	@version		1.0
//	@description	Webhook bridge that keeps storefront stock and inventory sales orders in sync.

//	@contact.name	StoreSync
//	@contact.url	https://github.com/storesync/backend

//	@host		localhost:8080
//	@BasePath	/
//	@schemes	http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	// Bootstrap logger; replaced once the OTEL log pipeline is up
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}

	otelLevel, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		otelLevel = zapcore.InfoLevel
	}
	log, err := logger.New(logCfg, logProvider.ZapCore(otelLevel))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting storesync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeServer,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	dbOpts := []persistence.DatabaseOption{persistence.WithGormLogger(gormLog)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		traceCfg := telemetry.DefaultDBTracingConfig()
		if cfg.Database.Driver == config.DriverSQLite {
			traceCfg.DBSystem = "sqlite"
		}
		traceCfg.IncludeVariables = cfg.App.Env == "development"
		dbOpts = append(dbOpts, persistence.WithPlugin(telemetry.NewDBTracingPlugin(traceCfg)))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Delivery deduplication
	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Idempotency, cfg.Redis,
		cache.WithLogger(log),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Payload archive
	var archive syncapp.PayloadArchive
	if cfg.Archive.Enabled {
		s3Archive, err := storage.NewS3PayloadArchive(ctx, cfg.Archive, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create payload archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Warn("Payload archive bucket check failed", zap.String("bucket", s3Archive.Bucket()), zap.Error(err))
		}
		archive = s3Archive
	}

	// Repositories
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	tokenRepo := persistence.NewGormTokenRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	// Platform adapters
	inventoryConnector := zoho.NewConnector(cfg.Inventory, zoho.WithRecorder(syncMetrics))
	inventoryAuthorizer := zoho.NewAuthorizer(cfg.Inventory, zoho.WithRecorder(syncMetrics))
	storefrontConnector := ecwid.NewConnector(cfg.Storefront, ecwid.WithRecorder(syncMetrics))

	secrets := storesync.WebhookSecrets{
		InventoryAdjustment: cfg.Webhooks.InventoryAdjustmentSecret,
		Sales:               cfg.Webhooks.SalesSecret,
		Purchase:            cfg.Webhooks.PurchaseSecret,
		Transfer:            cfg.Webhooks.TransferSecret,
	}
	if missing := secrets.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = c.String()
		}
		log.Warn("Webhook secrets not configured; those categories will be rejected", zap.Strings("categories", names))
	}

	// Application services
	resolver := syncapp.NewIdentityResolver(storeRepo, itemRepo)
	tokenGate := syncapp.NewTokenRefreshGate(syncapp.TokenRefreshGateConfig{
		Tokens:     tokenRepo,
		Authorizer: inventoryAuthorizer,
		Metrics:    syncMetrics,
		Logger:     log,
	})
	reconciler := syncapp.NewStockReconciliationService(syncapp.StockReconciliationServiceConfig{
		Validator: storesync.NewSignatureValidator(secrets),
		Normalizers: storesync.NewNormalizerRegistry(storesync.SalesFilter{
			CounterpartCustomerID: cfg.Webhooks.CounterpartCustomerID,
			Mode:                  storesync.SalesFilterMode(cfg.Webhooks.SalesCustomerFilter),
		}),
		Resolver:          resolver,
		Audits:            auditRepo,
		Storefront:        storefrontConnector,
		Idempotency:       idempotency,
		IdempotencyTTL:    cfg.Idempotency.TTL,
		Archive:           archive,
		TargetWarehouseID: cfg.Webhooks.TargetWarehouseID,
		Metrics:           syncMetrics,
		Logger:            log,
	})
	orderLifecycle := syncapp.NewOrderLifecycleService(syncapp.OrderLifecycleServiceConfig{
		Resolver:       resolver,
		Orders:         orderRepo,
		Tokens:         tokenGate,
		Inventory:      inventoryConnector,
		Storefront:     storefrontConnector,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Idempotency.TTL,
		Archive:        archive,
		Metrics:        syncMetrics,
		Logger:         log,
	})
	oauthService := syncapp.NewOAuthService(syncapp.OAuthServiceConfig{
		Stores:        storeRepo,
		Tokens:        tokenRepo,
		Authorizer:    inventoryAuthorizer,
		States:        auth.NewStateService(cfg.Inventory),
		UsedStates:    idempotency,
		StateTTL:      cfg.Inventory.StateTTL,
		DefaultScopes: cfg.Inventory.DefaultScopes,
		Logger:        log,
	})

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:           log,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: profiler.IsEnabled(),
		MeterProvider:    meterProvider,
		Security: middleware.SecurityConfig{
			HSTSEnabled: cfg.IsProduction(),
			HSTSMaxAge:  middleware.DefaultSecurityConfig().HSTSMaxAge,
		},
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
		MaxBodySize: cfg.Webhooks.MaxPayloadSize,
	}, router.Handlers{
		InventoryWebhook:  handler.NewInventoryWebhookHandler(reconciler),
		StorefrontWebhook: handler.NewStorefrontWebhookHandler(orderLifecycle),
		OAuth:             handler.NewOAuthHandler(oauthService),
		Health:            handler.NewHealthHandler(db, version),
	})

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if idempotency != nil {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		bootLog.Error("Error shutting down log provider", zap.Error(err))
	}
}
