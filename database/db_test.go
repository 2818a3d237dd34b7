package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db?sslmode=disable",
		MigrationURL("postgres://u:p@localhost:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://localhost/db", MigrationURL("postgresql://localhost/db"))
	assert.Equal(t, "pgx5://already", MigrationURL("pgx5://already"))
}

func TestMigrations_DeclareActiveGoalIndex(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)

	sql := string(up)
	assert.True(t, strings.Contains(sql, "ux_daily_goals_active ON daily_goals (user_id, type) WHERE is_active"))

	_, err = fs.ReadFile(migrationsFS, "migrations/000001_init.down.sql")
	assert.NoError(t, err)
}
