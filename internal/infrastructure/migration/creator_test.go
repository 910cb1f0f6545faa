package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erp/buildledger/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add retention column", "add_retention_column"},
		{"Add-Retention-Column", "add_retention_column"},
		{"ADD__BILL__INDEX", "add_bill_index"},
		{"   spaces   ", "spaces"},
		{"gst!@#rates", "gstrates"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreate_NumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	first, err := Create(dir, "add retention column", "Retention on bills")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_add_retention_column.up.sql", filepath.Base(first.UpPath))
	assert.Equal(t, "000001_add_retention_column.down.sql", filepath.Base(first.DownPath))

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Retention on bills")
	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	second, err := Create(dir, "bill index", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.True(t, strings.HasPrefix(filepath.Base(second.UpPath), "000002_"))
}

func TestCreate_RejectsEmptyName(t *testing.T) {
	_, err := Create(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000010_late.up.sql", "000010_late.down.sql",
		"000002_second.up.sql", "000002_second.down.sql",
		"000001_first.up.sql", "000001_first.down.sql",
		"notes.md", "bad_name.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("--"), 0o644))
	}

	got, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Version: 1, Name: "first"},
		{Version: 2, Name: "second"},
		{Version: 10, Name: "late"},
	}, got)

	missing, err := List(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrations.FS, down)
		assert.NoError(t, err, "missing %s", down)
	}

	schema, err := fs.ReadFile(migrations.FS, "000002_inventory.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "idx_godown_stocks_key ON godown_stocks (tenant_id, godown_id, product_id)")
}
