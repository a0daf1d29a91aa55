package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add delivery index", "add_delivery_index"},
		{"Add-Delivery-Index", "add_delivery_index"},
		{"ADD_DELIVERY_INDEX", "add_delivery_index"},
		{"add__delivery__index", "add_delivery_index"},
		{"Add Index 123", "add_index_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add delivery index", "Index webhook audits by delivery id")
	require.NoError(t, err)
	assert.Equal(t, uint(1), mf.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_delivery_index.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_delivery_index.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_delivery_index\n")
	assert.Contains(t, string(up), "-- Description: Index webhook audits by delivery id")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_Sequential(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_existing.up.sql"), []byte("--"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_existing.down.sql"), []byte("--"), 0o644))

	mf, err := CreateMigration(dir, "next", "")
	require.NoError(t, err)
	assert.Equal(t, uint(5), mf.Version)
	assert.FileExists(t, filepath.Join(dir, "000005_next.up.sql"))
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "first", "")
	require.NoError(t, err)
	assert.DirExists(t, nested)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	source := fstest.MapFS{
		"000002_add_index.up.sql":     {Data: []byte("--")},
		"000002_add_index.down.sql":   {Data: []byte("--")},
		"000001_init_schema.up.sql":   {Data: []byte("--")},
		"000001_init_schema.down.sql": {Data: []byte("--")},
		"000003_no_down.up.sql":       {Data: []byte("--")},
		"README.md":                   {Data: []byte("docs")},
		"bad_name.up.sql":             {Data: []byte("--")},
		"sub/000009_nested.up.sql":    {Data: []byte("--")},
	}

	entries, err := ListMigrations(source)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "000001_init_schema", entries[0].String())
	assert.Equal(t, "000002_add_index", entries[1].String())
	assert.Equal(t, uint(3), entries[2].Version)
	assert.True(t, entries[0].HasDown)
	assert.False(t, entries[2].HasDown)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	entries, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for i, e := range entries {
		assert.Equal(t, uint(i+1), e.Version, "versions must be contiguous")
		assert.True(t, e.HasDown, "%s has no down migration", e)
	}
}
