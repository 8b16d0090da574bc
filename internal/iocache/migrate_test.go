package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hfconf/hfconf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRuns_NoneBackend(t *testing.T) {
	err := MigrateRuns(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	// Run migration to latest version
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// Run migration again (should be a no-op)
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

	// Step down to the runs table only
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))

	// Rollback to version 0
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))

	// Migrate back up
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 2))
}

func TestMigrateRuns_AfterStoreCreatedTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Tables already exist; the migrations must still apply cleanly
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
}

func TestMigrateRuns_UnsupportedBackend(t *testing.T) {
	err := MigrateRuns(schema.DatabaseBackend("oracle"), "", -1)
	assert.Error(t, err)
}
