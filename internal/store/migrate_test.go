package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMigrationTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func tableExists(t *testing.T, s *Store, name string) bool {
	t.Helper()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestMigrateUpDown(t *testing.T) {
	s := setupMigrationTestStore(t)
	fsys := Migrations()

	version, dirty, err := s.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, s.MigrateUp(fsys))
	version, _, err = s.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.True(t, tableExists(t, s, "flights"))
	assert.True(t, tableExists(t, s, "state_vectors"))

	// Already at latest.
	require.NoError(t, s.MigrateUp(fsys))

	require.NoError(t, s.MigrateDown(fsys))
	version, _, err = s.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, s.MigrateDown(fsys))
	assert.False(t, tableExists(t, s, "flights"))
}

func TestMigrateForce(t *testing.T) {
	s := setupMigrationTestStore(t)
	fsys := Migrations()

	require.NoError(t, s.MigrateForce(fsys, 1))
	version, dirty, err := s.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestMigrateNilFS(t *testing.T) {
	s := setupMigrationTestStore(t)
	assert.Error(t, s.MigrateUp(nil))
}
