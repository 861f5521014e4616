package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/examiner/internal/config"
)

func TestNewPoolRequiresURL(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{})
	require.True(t, errors.Is(err, ErrNotConfigured))
}

func TestNewPoolRejectsBadURL(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{URL: "postgres://%zz"})
	require.ErrorContains(t, err, "parse database URL")
}

func TestMigrationFilesOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":      {Data: []byte("SELECT 1")},
		"001_turn_usage.sql": {Data: []byte("SELECT 1")},
		"README.md":          {Data: []byte("notes")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_turn_usage.sql", "010_later.sql"}, files)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := migrationFiles(MigrationsFS(""))
	require.NoError(t, err)
	assert.Contains(t, files, "001_turn_usage.sql")
}
