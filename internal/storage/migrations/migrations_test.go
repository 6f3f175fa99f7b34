package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpSQLiteIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "registrar.db")

	require.NoError(t, Up("sqlite", path))
	require.NoError(t, Up("sqlite", path))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "events", "registrations"} {
		var name string
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestUpRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	require.Error(t, Up("mysql", "irrelevant"))
}
