package store

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func init() {
	InitVectorExtension()
}

// NewTestStore opens an in-memory SQLite database, creates the full schema
// at the given embedding dimension, and registers cleanup with t.Cleanup().
// Pass dim 0 to defer vector-table creation to first insert.
func NewTestStore(t testing.TB, dim int) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := Open(db, dim)
	require.NoError(t, err)
	return s
}
