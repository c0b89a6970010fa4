package postgres

import (
	"github.com/Olprog59/go-familyhub/internal/repository/sqlstore"
	"github.com/jmoiron/sqlx"
)

// Factory implements DatabaseFactory for PostgreSQL / Implémente DatabaseFactory pour PostgreSQL
type Factory struct{}

// Dialect describes PostgreSQL / Décrit PostgreSQL
func (f *Factory) Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:           "postgres",
		BindType:       sqlx.DOLLAR,
		Returning:      true,
		InsertIgnore:   "INSERT INTO",
		ConflictSuffix: " ON CONFLICT DO NOTHING",
		TranslateError: handleError,
	}
}
