package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/jmoiron/sqlx"
)

// store carries the connection and dialect shared by every repository
type store struct {
	db      ports.DBTX
	dialect Dialect
}

func newStore(conn ports.DBTX, dialect Dialect) store {
	if dialect.InsertIgnore == "" {
		dialect.InsertIgnore = DefaultDialect.InsertIgnore
	}
	return store{db: conn, dialect: dialect}
}

func (s store) rebind(query string) string {
	return sqlx.Rebind(s.dialect.BindType, query)
}

// translate maps driver errors to db errors / Traduit les erreurs du driver
func (s store) translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return db.ErrNoRecord
	}
	if s.dialect.TranslateError != nil {
		return s.dialect.TranslateError(err)
	}
	return err
}

func (s store) get(ctx context.Context, dest any, query string, args ...any) error {
	return s.translate(sqlx.GetContext(ctx, s.db, dest, s.rebind(query), args...))
}

func (s store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return s.translate(sqlx.SelectContext(ctx, s.db, dest, s.rebind(query), args...))
}

func (s store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	return res, s.translate(err)
}

// execOne fails with ErrNoRecord when no row changed / Échoue avec ErrNoRecord si aucune ligne n'a changé
func (s store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.translate(err)
	}
	if n == 0 {
		return db.ErrNoRecord
	}
	return nil
}

// execChanged reports whether a row changed / Indique si une ligne a changé
func (s store) execChanged(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.translate(err)
	}
	return n > 0, nil
}

// insert runs an INSERT and returns the generated id / Exécute un INSERT et retourne l'id généré
func (s store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect.Returning {
		var id int64
		err := sqlx.GetContext(ctx, s.db, &id, s.rebind(query+" RETURNING id"), args...)
		return id, s.translate(err)
	}

	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return id, s.translate(err)
}

func (s store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.get(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// inTx runs fn inside a transaction unless one is already open / Exécute fn dans une transaction si besoin
func (s store) inTx(ctx context.Context, fn func(store) error) error {
	conn, ok := s.db.(*sqlx.DB)
	if !ok {
		return fn(s)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return s.translate(err)
	}
	if err := fn(store{db: tx, dialect: s.dialect}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return s.translate(tx.Commit())
}

// in expands a slice argument and rebinds / Développe un argument slice et adapte les paramètres
func (s store) in(query string, args ...any) (string, []any, error) {
	q, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("expand query: %w", err)
	}
	return q, expanded, nil
}

// where joins filter clauses / Assemble les clauses de filtre
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// likePattern builds a case-insensitive contains pattern escaped with '!' / Motif LIKE échappé avec '!'
func likePattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// now returns the timestamp written by repositories / Horodatage écrit par les repositories
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// utcPtr normalizes optional timestamps / Normalise les horodatages optionnels
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
