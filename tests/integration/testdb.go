// Package integration runs the repositories and services against a real
// PostgreSQL started with testcontainers. The tests are skipped under -short.
package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/erp/buildledger/internal/domain/tenant"
	"github.com/erp/buildledger/internal/infrastructure/migration"
	"github.com/erp/buildledger/internal/infrastructure/persistence"
	"github.com/erp/buildledger/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is a migrated database in its own container
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts a PostgreSQL container and applies the embedded migrations.
// The container is terminated when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test: needs Docker")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("buildledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	database, err := persistence.NewDatabaseFromDialector(postgres.Open(dsn), logger.Default.LogMode(level))
	require.NoError(t, err, "Failed to connect to database")
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)

	tdb := &TestDB{
		DB:        database.DB,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(tdb.Close)

	tdb.Migrator().Up()
	return tdb
}

// Migrator returns a migrator over the embedded schema. Failures end the test.
func (tdb *TestDB) Migrator() *testMigrator {
	tdb.t.Helper()
	m, err := migration.NewFromFS(tdb.SqlDB, migrations.FS, zap.NewNop())
	require.NoError(tdb.t, err)
	return &testMigrator{t: tdb.t, m: m}
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CreateTenant stores an active tenant registered in Maharashtra
func (tdb *TestDB) CreateTenant(code string) uuid.UUID {
	tdb.t.Helper()
	tn, err := tenant.NewTenant(code, "Tenant "+code, "27", "")
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormTenantRepository(tdb.DB).Save(context.Background(), tn))
	return tn.ID
}

type testMigrator struct {
	t *testing.T
	m *migration.Migrator
}

func (tm *testMigrator) Up() {
	tm.t.Helper()
	require.NoError(tm.t, tm.m.Up(), "Failed to run migrations")
}

func (tm *testMigrator) Down() {
	tm.t.Helper()
	require.NoError(tm.t, tm.m.Down(), "Failed to roll back migrations")
}

func (tm *testMigrator) Version() (uint, bool) {
	tm.t.Helper()
	v, dirty, err := tm.m.Version()
	require.NoError(tm.t, err)
	return v, dirty
}
