package db

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
)

// migrationDriver wraps an open pool in the golang-migrate driver for its backend.
// The returned name is the one golang-migrate registers the driver under.
func migrationDriver(conn *sql.DB, t DatabaseType) (string, database.Driver, error) {
	var (
		name   string
		driver database.Driver
		err    error
	)
	switch t {
	case SQLite:
		name = "sqlite3"
		driver, err = sqlite.WithInstance(conn, &sqlite.Config{})
	case MySQL:
		name = "mysql"
		driver, err = mysql.WithInstance(conn, &mysql.Config{})
	case PostgreSQL:
		name = "postgres"
		driver, err = postgres.WithInstance(conn, &postgres.Config{})
	default:
		return "", nil, fmt.Errorf("%w for migrations: %s", ErrUnsupportedDatabase, t)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s migration driver: %w", t, err)
	}
	return name, driver, nil
}
