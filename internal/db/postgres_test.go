package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	names, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/001_initial_schema.sql", names[0])

	sqlBytes, err := migrations.ReadFile(names[0])
	require.NoError(t, err)
	schema := string(sqlBytes)
	for _, table := range []string{"cities", "communities", "missionaries", "missionary_hours", "import_batches", "idempotency_keys"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
	assert.True(t, strings.Contains(schema, "email") && strings.Contains(schema, "UNIQUE"))
}
