package mysql

import (
	"github.com/Olprog59/go-familyhub/internal/repository/sqlstore"
	"github.com/jmoiron/sqlx"
)

// Factory implements DatabaseFactory for MySQL / Implémente DatabaseFactory pour MySQL
type Factory struct{}

// Dialect describes MySQL / Décrit MySQL
func (f *Factory) Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:           "mysql",
		BindType:       sqlx.QUESTION,
		InsertIgnore:   "INSERT IGNORE INTO",
		TranslateError: handleError,
	}
}
