package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db))

	applied, err := Applied(db)
	require.NoError(t, err)
	assert.True(t, applied[1])
	assert.True(t, applied[2])

	t.Run("second run is a no-op", func(t *testing.T) {
		require.NoError(t, RunMigrations(db))

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
		assert.Equal(t, len(registry), count)
	})

	t.Run("tables exist", func(t *testing.T) {
		for _, table := range []string{"listings", "bookings", "manual_chunks"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
			require.NoError(t, err, table)
			assert.Equal(t, table, name)
		}
	})
}
