package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/magicauth/internal/model"
	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestUserRepo_CreateConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})

	err := NewUserRepo(db).Create(context.Background(), &model.User{ID: "u1", Email: "a@b.co", CreatedAt: time.Now()})
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM users WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "created_at"}).AddRow("u1", "a@b.co", created))

	user, err := NewUserRepo(db).GetByEmail(context.Background(), "a@b.co")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "a@b.co", user.Email)
	require.True(t, created.Equal(user.CreatedAt))
}

func TestUserRepo_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "created_at"}))

	_, err := NewUserRepo(db).GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestVerificationTokenRepo_Get(t *testing.T) {
	db, mock := newMockDB(t)
	exp := time.Now().Add(15 * time.Minute)
	mock.ExpectQuery(`SELECT .* FROM verification_tokens WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"token", "email", "expires_at", "used"}).AddRow("tok", "a@b.co", exp, false))

	item, err := NewVerificationTokenRepo(db).Get(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "a@b.co", item.Email)
	require.False(t, item.Used)
}

func TestVerificationTokenRepo_MarkUsed(t *testing.T) {
	db, mock := newMockDB(t)
	q := `UPDATE verification_tokens SET used = TRUE WHERE token = \$1 AND used = FALSE`
	mock.ExpectExec(q).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewVerificationTokenRepo(db)
	ok, err := r.MarkUsed(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.MarkUsed(context.Background(), "tok")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerificationTokenRepo_MarkUsedStorageError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE verification_tokens`).WillReturnError(errors.New("connection reset"))

	_, err := NewVerificationTokenRepo(db).MarkUsed(context.Background(), "tok")
	require.ErrorIs(t, err, appErr.ErrStorageUnavailable)
}

func TestVerificationTokenRepo_DeleteExpiredOrUsed(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectExec(`DELETE FROM verification_tokens WHERE expires_at < \$1 OR used = TRUE`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewVerificationTokenRepo(db).DeleteExpiredOrUsed(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestSessionRepo_Get(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM sessions WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "last_used_at"}).
			AddRow("s1", "u1", now.Add(time.Hour), now))

	session, err := NewSessionRepo(db).Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "u1", session.UserID)
}

func TestSessionRepo_RefreshAndDelete(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	exp := now.Add(30 * 24 * time.Hour)
	mock.ExpectExec(`UPDATE sessions SET expires_at = \$1, last_used_at = \$2 WHERE token = \$3`).
		WithArgs(exp, now, "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM sessions WHERE token = \$1`).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewSessionRepo(db)
	require.NoError(t, r.Refresh(context.Background(), "s1", exp, now))
	require.NoError(t, r.Delete(context.Background(), "s1"))
}

func TestSessionRepo_DeleteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := NewSessionRepo(db).DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}
