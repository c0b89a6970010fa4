package repository

import "github.com/Olprog59/go-familyhub/internal/repository/db"

// Re-export common errors for convenience / Ré-exporte les erreurs communes
var (
	ErrNoRecord            = db.ErrNoRecord
	ErrDuplicate           = db.ErrDuplicate
	ErrForeignKeyViolation = db.ErrForeignKeyViolation
	ErrBusy                = db.ErrBusy
	ErrLocked              = db.ErrLocked
	ErrStale               = db.ErrStale
)
