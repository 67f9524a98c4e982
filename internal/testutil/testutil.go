package testutil

import (
	"database/sql"
	"testing"

	"github.com/memotica/memotica/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// Foreign keys are enforced and the pool holds a single connection, so every
// query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	return conn.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
