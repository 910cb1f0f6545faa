package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/erp/buildledger/internal/infrastructure/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestProvidersDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{Enabled: false, ServiceName: "buildledger"}
	log := zap.NewNop()

	tp, err := NewTracerProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	tp.EnableSpanProfiles()
	assert.False(t, tp.SpanProfilesEnabled())
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.ZapCore("buildledger", zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(config.ProfilingConfig{}, "buildledger", log)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestProfileTypes(t *testing.T) {
	basic := ProfileTypes(config.ProfilingConfig{})
	assert.Len(t, basic, 3)
	assert.Contains(t, basic, pyroscope.ProfileCPU)

	all := ProfileTypes(config.ProfilingConfig{ProfileAllocations: true, ProfileGoroutines: true, ProfileMutexes: true})
	assert.Len(t, all, 8)
	assert.Contains(t, all, pyroscope.ProfileMutexDuration)
	assert.Contains(t, all, pyroscope.ProfileGoroutines)
}

func TestLevelFilterCore(t *testing.T) {
	core := &levelFilterCore{Core: zapcore.NewNopCore(), min: zapcore.WarnLevel}
	assert.False(t, core.Enabled(zapcore.InfoLevel))

	ce := core.Check(zapcore.Entry{Level: zapcore.InfoLevel}, nil)
	assert.Nil(t, ce)

	child := core.With([]zapcore.Field{zap.String("k", "v")})
	assert.Equal(t, zapcore.WarnLevel, child.(*levelFilterCore).min)
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestDBTracing_Disabled(t *testing.T) {
	db := openSQLite(t)
	tr := NewDBTracing(config.TelemetryConfig{Enabled: true, DBTraceEnabled: false}, "buildledger", zap.NewNop())
	require.NoError(t, tr.Register(db))
	assert.Nil(t, db.Callback().Query().Get("otel_timing:after_query"))
}

func TestDBTracing_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db := openSQLite(t)
	tr := NewDBTracing(config.TelemetryConfig{Enabled: true, DBTraceEnabled: true, DBSlowQueryThresh: time.Second}, "buildledger", zap.NewNop())
	require.NoError(t, tr.Register(db))
	assert.NotNil(t, db.Callback().Query().Get("otel_timing:after_query"))

	require.NoError(t, db.WithContext(context.Background()).Exec("CREATE TABLE godowns (id TEXT)").Error)
	assert.NotEmpty(t, recorder.Ended())
}

func TestDBTracing_MarksSlowQuery(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := provider.Tracer("test").Start(context.Background(), "query")

	tr := NewDBTracing(config.TelemetryConfig{DBSlowQueryThresh: 100 * time.Millisecond}, "buildledger", zap.NewNop())
	tx := openSQLite(t).WithContext(ctx).InstanceSet(queryStartKey, time.Now().Add(-time.Second))
	tx.Statement.Table = "stock_movements"
	tx.Statement.RowsAffected = 3
	tr.after(tx)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, "stock_movements", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "slow_query_warning", ended[0].Events()[0].Name)
}
