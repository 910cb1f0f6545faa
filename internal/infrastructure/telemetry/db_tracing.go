package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/erp/buildledger/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// DBTracing adds otelgorm spans to a GORM instance and marks slow queries on them
type DBTracing struct {
	enabled       bool
	fullSQL       bool
	slowThreshold time.Duration
	dbName        string
	logger        *zap.Logger
}

// NewDBTracing builds the plugin from telemetry configuration
func NewDBTracing(cfg config.TelemetryConfig, dbName string, logger *zap.Logger) *DBTracing {
	return &DBTracing{
		enabled:       cfg.Enabled && cfg.DBTraceEnabled,
		fullSQL:       cfg.DBLogFullSQL,
		slowThreshold: cfg.DBSlowQueryThresh,
		dbName:        dbName,
		logger:        logger,
	}
}

// Register installs otelgorm and the timing callbacks. The after hook runs
// ahead of otelgorm's so the span is still recording.
func (t *DBTracing) Register(db *gorm.DB) error {
	if !t.enabled {
		t.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(t.dbName)}
	if !t.fullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}
	if err := t.registerCallbacks(db); err != nil {
		return err
	}

	t.logger.Info("Database tracing enabled",
		zap.String("db_name", t.dbName),
		zap.Duration("slow_query_threshold", t.slowThreshold))
	return nil
}

func (t *DBTracing) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	type hook struct {
		op     string
		before func(string) error
		after  func(string) error
	}
	hooks := []hook{
		{"create", func(n string) error { return cb.Create().Before("gorm:create").Register(n, t.before) },
			func(n string) error { return cb.Create().After("gorm:create").Before("otel:after:create").Register(n, t.after) }},
		{"query", func(n string) error { return cb.Query().Before("gorm:query").Register(n, t.before) },
			func(n string) error { return cb.Query().After("gorm:query").Before("otel:after:query").Register(n, t.after) }},
		{"update", func(n string) error { return cb.Update().Before("gorm:update").Register(n, t.before) },
			func(n string) error { return cb.Update().After("gorm:update").Before("otel:after:update").Register(n, t.after) }},
		{"delete", func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, t.before) },
			func(n string) error { return cb.Delete().After("gorm:delete").Before("otel:after:delete").Register(n, t.after) }},
		{"row", func(n string) error { return cb.Row().Before("gorm:row").Register(n, t.before) },
			func(n string) error { return cb.Row().After("gorm:row").Before("otel:after:row").Register(n, t.after) }},
		{"raw", func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, t.before) },
			func(n string) error { return cb.Raw().After("gorm:raw").Before("otel:after:raw").Register(n, t.after) }},
	}
	for _, h := range hooks {
		if err := h.before("otel_timing:before_" + h.op); err != nil {
			return fmt.Errorf("failed to register before_%s callback: %w", h.op, err)
		}
		if err := h.after("otel_timing:after_" + h.op); err != nil {
			return fmt.Errorf("failed to register after_%s callback: %w", h.op, err)
		}
	}
	return nil
}

func (t *DBTracing) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (t *DBTracing) after(db *gorm.DB) {
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

	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > t.slowThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", t.slowThreshold.Milliseconds()),
		))
	}
}
