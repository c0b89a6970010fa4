package db

import (
	"fmt"
	"strings"
)

// DatabaseType names a supported backend / Nomme un backend supporté
type DatabaseType string

const (
	SQLite     DatabaseType = "sqlite"
	MySQL      DatabaseType = "mysql"
	PostgreSQL DatabaseType = "postgres"
)

// ParseDatabaseType reads a configured backend name, SQLite when empty / Lit le nom du backend, SQLite si vide
func ParseDatabaseType(name string) (DatabaseType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pg":
		return PostgreSQL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDatabase, name)
}

func (t DatabaseType) String() string {
	return string(t)
}

// DriverName is the database/sql driver registered for the backend
func (t DatabaseType) DriverName() string {
	switch t {
	case MySQL:
		return "mysql"
	case PostgreSQL:
		return "postgres"
	default:
		return "sqlite"
	}
}
