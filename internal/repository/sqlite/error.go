package sqlite

import (
	"errors"
	"log/slog"

	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// handleError translates SQLite errors to typed errors / Traduit les erreurs SQLite en erreurs typées
func handleError(err error) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}

	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return db.ErrDuplicate
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return db.ErrForeignKeyViolation
	case sqlite3.SQLITE_BUSY:
		slog.Warn("database is busy", "error", liteErr.Error())
		return db.ErrBusy
	case sqlite3.SQLITE_LOCKED:
		slog.Warn("database is locked", "error", liteErr.Error())
		return db.ErrLocked
	}
	slog.Debug("unmapped sqlite error", "code", liteErr.Code(), "error", liteErr.Error())
	return err
}
