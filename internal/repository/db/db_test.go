package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseType(t *testing.T) {
	tests := []struct {
		in      string
		want    DatabaseType
		wantErr bool
	}{
		{"", SQLite, false},
		{"SQLite3", SQLite, false},
		{" mysql ", MySQL, false},
		{"mariadb", MySQL, false},
		{"postgresql", PostgreSQL, false},
		{"pg", PostgreSQL, false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDatabaseType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedDatabase)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "sqlite", SQLite.DriverName())
	assert.Equal(t, "mysql", MySQL.DriverName())
	assert.Equal(t, "postgres", PostgreSQL.DriverName())
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"family.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		SQLiteDSN("family.db"))
	assert.Equal(t,
		"file:family.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		SQLiteDSN("file:family.db?mode=rwc"))
}

func TestOpenAndMigrate(t *testing.T) {
	conn, err := Open(context.Background(), Options{DSN: filepath.Join(t.TempDir(), "family.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var fk int
	require.NoError(t, conn.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)

	require.NoError(t, Migrate(conn.DB, SQLite, ""))
	// A second run has nothing to apply
	require.NoError(t, Migrate(conn.DB, SQLite, ""))

	var tables int
	require.NoError(t, conn.Get(&tables, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'"))
	assert.Equal(t, 1, tables)
}

func TestMigrate_UnsupportedType(t *testing.T) {
	conn, err := Open(context.Background(), Options{Type: SQLite, DSN: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	assert.ErrorIs(t, Migrate(conn.DB, DatabaseType("oracle"), ""), ErrUnsupportedDatabase)
}
