package postgres

import (
	"errors"

	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/lib/pq"
)

// handleError translates PostgreSQL errors to typed errors / Traduit les erreurs PostgreSQL en erreurs typées
func handleError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		return db.ErrDuplicate
	case "23503": // foreign_key_violation
		return db.ErrForeignKeyViolation
	}
	return err
}
