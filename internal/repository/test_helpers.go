package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/jmoiron/sqlx"
)

// NewTestDB opens a migrated SQLite database in a temp dir / Ouvre une base SQLite migrée dans un répertoire temporaire
func NewTestDB(tb testing.TB) *sqlx.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.db")
	database, err := db.Open(context.Background(), db.Options{Type: db.SQLite, DSN: path})
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}
	tb.Cleanup(func() { database.Close() })

	if err := db.Migrate(database.DB, db.SQLite, ""); err != nil {
		tb.Fatalf("migrate test database: %v", err)
	}

	return database
}

// NewTestAdapter returns an adapter over a fresh test database / Retourne un adapteur sur une base de test
func NewTestAdapter(tb testing.TB) (*Adapter, *sqlx.DB) {
	tb.Helper()
	database := NewTestDB(tb)
	return NewAdapter(database, "sqlite"), database
}
