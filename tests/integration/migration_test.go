package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_RoundTrip(t *testing.T) {
	tdb := NewTestDB(t)

	version, dirty := tdb.Migrator().Version()
	assert.False(t, dirty)
	require.NotZero(t, version)

	tdb.Migrator().Down()
	var tables int64
	require.NoError(t, tdb.DB.Raw(`SELECT count(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN ('tenants', 'godown_stocks', 'bills')`).Scan(&tables).Error)
	assert.Zero(t, tables)

	tdb.Migrator().Up()
	again, dirty := tdb.Migrator().Version()
	assert.False(t, dirty)
	assert.Equal(t, version, again)

	// the schema is usable after a full rebuild
	tdb.CreateTenant("after-rebuild")
}
