package repository

import "github.com/Olprog59/go-familyhub/internal/repository/sqlstore"

// DatabaseFactory must be implemented by each database package / Doit être implémenté par chaque package de BD
// Repositories are written once in sqlstore; a database package only
// describes its placeholders, id retrieval, duplicate-skipping insert and errors.
// Les repositories sont écrits une fois dans sqlstore ; un package de BD ne décrit
// que ses paramètres, la récupération des ids, l'insert sans doublon et ses erreurs.
type DatabaseFactory interface {
	// Dialect returns the database description / Retourne la description de la BD
	Dialect() sqlstore.Dialect
}
