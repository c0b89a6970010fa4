// Package sqlstore implements the repositories once for every SQL dialect.
// Dialect packages (sqlite, postgres, mysql) only describe their differences.
package sqlstore

import "github.com/jmoiron/sqlx"

// Dialect describes how a database differs / Décrit les particularités d'une base de données
type Dialect struct {
	// Name of the database/sql driver / Nom du driver database/sql
	Name string
	// BindType is one of sqlx.QUESTION, sqlx.DOLLAR / Style des paramètres
	BindType int
	// Returning fetches generated ids with INSERT ... RETURNING id
	Returning bool
	// InsertIgnore starts an insert that skips duplicates / Début d'un insert qui ignore les doublons
	InsertIgnore string
	// ConflictSuffix ends that insert / Fin de cet insert
	ConflictSuffix string
	// TranslateError maps driver errors to db errors / Traduit les erreurs du driver
	TranslateError func(error) error
}

// DefaultDialect is used when a factory leaves fields empty / Utilisé quand une factory laisse des champs vides
var DefaultDialect = Dialect{
	Name:         "sqlite",
	BindType:     sqlx.QUESTION,
	InsertIgnore: "INSERT OR IGNORE INTO",
}
