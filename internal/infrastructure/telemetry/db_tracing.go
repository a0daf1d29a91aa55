package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// DBTracingConfig holds gorm tracing configuration.
type DBTracingConfig struct {
	DBSystem        string
	SlowQueryThresh time.Duration
	// IncludeVariables puts bound values into span statements. Token rows
	// carry secrets, so keep this off outside development.
	IncludeVariables bool
}

// DefaultDBTracingConfig returns the production-safe defaults.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		DBSystem:        "postgresql",
		SlowQueryThresh: 200 * time.Millisecond,
	}
}

// DBTracingPlugin is a gorm.Plugin that registers otelgorm and annotates
// each statement span with table, row count, slow-query flag and errors.
type DBTracingPlugin struct {
	config DBTracingConfig
}

// NewDBTracingPlugin creates the plugin. Register it with db.Use or
// persistence.WithPlugin.
func NewDBTracingPlugin(cfg DBTracingConfig) *DBTracingPlugin {
	if cfg.SlowQueryThresh == 0 {
		cfg.SlowQueryThresh = DefaultDBTracingConfig().SlowQueryThresh
	}
	return &DBTracingPlugin{config: cfg}
}

// Name implements gorm.Plugin.
func (p *DBTracingPlugin) Name() string {
	return "storesync:db_tracing"
}

// Initialize implements gorm.Plugin.
func (p *DBTracingPlugin) Initialize(db *gorm.DB) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.IncludeVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	register := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("storesync_timing:before_create", markStart) },
		func() error { return cb.Query().Before("gorm:query").Register("storesync_timing:before_query", markStart) },
		func() error { return cb.Update().Before("gorm:update").Register("storesync_timing:before_update", markStart) },
		func() error { return cb.Delete().Before("gorm:delete").Register("storesync_timing:before_delete", markStart) },
		func() error { return cb.Row().Before("gorm:row").Register("storesync_timing:before_row", markStart) },
		func() error { return cb.Raw().Before("gorm:raw").Register("storesync_timing:before_raw", markStart) },
		func() error { return cb.Create().After("gorm:create").Register("storesync_timing:after_create", p.annotate) },
		func() error { return cb.Query().After("gorm:query").Register("storesync_timing:after_query", p.annotate) },
		func() error { return cb.Update().After("gorm:update").Register("storesync_timing:after_update", p.annotate) },
		func() error { return cb.Delete().After("gorm:delete").Register("storesync_timing:after_delete", p.annotate) },
		func() error { return cb.Row().After("gorm:row").Register("storesync_timing:after_row", p.annotate) },
		func() error { return cb.Raw().After("gorm:raw").Register("storesync_timing:after_raw", p.annotate) },
	}
	for _, fn := range register {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

type contextKey string

const queryStartTimeKey contextKey = "storesync_query_start"

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

var _ gorm.Plugin = (*DBTracingPlugin)(nil)
