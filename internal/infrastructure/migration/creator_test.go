package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create_entity_events", "create_entity_events"},
		{"Add Snapshot Table", "add_snapshot_table"},
		{"add-outbox-index", "add_outbox_index"},
		{"  spaces  ", "spaces"},
		{"with!special@chars", "withspecialchars"},
		{"v2 upgrade", "v2_upgrade"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NextSequenceForEveryDialect(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "postgres"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "postgres", "000002_create_outbox_entries.up.sql"), nil, 0o644))

	files, err := CreateMigration(root, "Add Snapshots")
	require.NoError(t, err)
	require.Len(t, files, len(Dialects))

	for _, f := range files {
		assert.Equal(t, uint(3), f.Version)
		assert.Equal(t, "000003_add_snapshots.up.sql", filepath.Base(f.UpPath))
		assert.FileExists(t, f.UpPath)
		assert.FileExists(t, f.DownPath)

		content, err := os.ReadFile(f.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- Migration: Add Snapshots ("+f.Dialect+")")
	}
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_create_outbox_entries.up.sql",
		"000002_create_outbox_entries.down.sql",
		"000001_create_entity_events.up.sql",
		"000001_create_entity_events.down.sql",
		"README.md",
		"not_a_version.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000009_dir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)

	assert.Equal(t, []Migration{
		{Version: 1, Name: "create_entity_events"},
		{Version: 2, Name: "create_outbox_entries"},
	}, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestEmbeddedMigrationsAreAligned(t *testing.T) {
	var versions [][]Migration
	for _, dialect := range Dialects {
		migrations, err := ListMigrations(filepath.Join("sql", dialect))
		require.NoError(t, err)
		require.NotEmpty(t, migrations)
		versions = append(versions, migrations)
	}
	for _, other := range versions[1:] {
		assert.Equal(t, versions[0], other)
	}
}
