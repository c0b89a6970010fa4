package ports

import "github.com/jmoiron/sqlx"

// DBTX abstracts database operations for both DB and Tx / Abstrait les opérations de BD pour DB et Tx
type DBTX interface {
	sqlx.ExtContext
}
