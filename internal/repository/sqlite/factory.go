package sqlite

import (
	"github.com/Olprog59/go-familyhub/internal/repository/sqlstore"
	"github.com/jmoiron/sqlx"
)

// Factory implements DatabaseFactory for SQLite / Implémente DatabaseFactory pour SQLite
// The compile-time check is in adapter.go to avoid import cycles
// La vérification à la compilation est dans adapter.go pour éviter les cycles d'imports
type Factory struct{}

// Dialect describes SQLite / Décrit SQLite
func (f *Factory) Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:           "sqlite",
		BindType:       sqlx.QUESTION,
		InsertIgnore:   "INSERT OR IGNORE INTO",
		TranslateError: handleError,
	}
}
