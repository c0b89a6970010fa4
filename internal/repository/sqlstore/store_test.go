package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, dialect Dialect) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Soup", "%soup%"},
		{"50%", "%50!%%"},
		{"a_b", "%a!_b%"},
		{"wow!", "%wow!!%"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, likePattern(tt.in))
		})
	}
}

func TestWhere(t *testing.T) {
	var w where
	assert.Empty(t, w.String())

	w.add("a = ?", 1)
	w.add("b IN (?, ?)", 2, 3)
	assert.Equal(t, " WHERE a = ? AND b IN (?, ?)", w.String())
	assert.Equal(t, []any{1, 2, 3}, w.args)
}

func TestStore_RebindDollar(t *testing.T) {
	s := newStore(nil, Dialect{BindType: sqlx.DOLLAR})
	assert.Equal(t, "SELECT * FROM posts WHERE id = $1 AND author_id = $2",
		s.rebind("SELECT * FROM posts WHERE id = ? AND author_id = ?"))
	assert.Equal(t, DefaultDialect.InsertIgnore, s.dialect.InsertIgnore)
}

func TestPostRepository_GetByIDNoRows(t *testing.T) {
	conn, mock := newMockStore(t, DefaultDialect)
	repo := NewPostRepository(conn, DefaultDialect)

	mock.ExpectQuery("SELECT p.id").WithArgs(int64(42)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 42, 0)
	assert.ErrorIs(t, err, db.ErrNoRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_UpdateMissing(t *testing.T) {
	conn, mock := newMockStore(t, DefaultDialect)
	repo := NewPostRepository(conn, DefaultDialect)

	mock.ExpectExec("UPDATE posts SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Post{ID: 7, Content: "x"})
	assert.ErrorIs(t, err, db.ErrNoRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_TranslateError(t *testing.T) {
	busy := errors.New("database is locked")
	dialect := DefaultDialect
	dialect.TranslateError = func(err error) error {
		if err == busy {
			return db.ErrBusy
		}
		return err
	}
	conn, mock := newMockStore(t, dialect)
	repo := NewGoalRepository(conn, dialect)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(busy)

	_, err := repo.Count(context.Background())
	assert.ErrorIs(t, err, db.ErrBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpRequestRepository_ExpireOverdueRollsBack(t *testing.T) {
	conn, mock := newMockStore(t, DefaultDialect)
	repo := NewHelpRequestRepository(conn, DefaultDialect)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM help_requests").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))
	mock.ExpectExec("UPDATE help_requests SET status").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	ids, err := repo.ExpireOverdue(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Nil(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpRequestRepository_ExpireOverdueNothingDue(t *testing.T) {
	conn, mock := newMockStore(t, DefaultDialect)
	repo := NewHelpRequestRepository(conn, DefaultDialect)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM help_requests").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	ids, err := repo.ExpireOverdue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpRequestRepository_ExpireOverdueSkipsClaimed(t *testing.T) {
	conn, mock := newMockStore(t, DefaultDialect)
	repo := NewHelpRequestRepository(conn, DefaultDialect)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM help_requests").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))
	mock.ExpectExec("UPDATE help_requests SET status .* AND status = \\?").
		WithArgs("expired", sqlmock.AnyArg(), int64(1), "open").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// claimed between the select and the update
	mock.ExpectExec("UPDATE help_requests SET status .* AND status = \\?").
		WithArgs("expired", sqlmock.AnyArg(), int64(2), "open").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ids, err := repo.ExpireOverdue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
