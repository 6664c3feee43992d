package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "migrations/000001_create_entities.up.sql")
	assert.Contains(t, files, "migrations/000001_create_entities.down.sql")

	up, err := fs.ReadFile(migrationsFS, "migrations/000001_create_entities.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "PRIMARY KEY (kind, id)")
}
