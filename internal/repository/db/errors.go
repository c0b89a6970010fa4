package db

import "errors"

// Common database errors / Erreurs communes de base de données
var (
	ErrNoRecord            = errors.New("no matching record found")
	ErrDuplicate           = errors.New("record already exists")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
	ErrBusy                = errors.New("database is busy")
	ErrLocked              = errors.New("database is locked")
	ErrStale               = errors.New("record changed since it was read")
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)
