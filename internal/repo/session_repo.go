package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/magicauth/internal/model"
	"github.com/xxxsen/magicauth/internal/pkg/dbutil"
	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
)

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	data := map[string]interface{}{
		"token":        session.Token,
		"user_id":      session.UserID,
		"expires_at":   session.ExpiresAt,
		"last_used_at": session.LastUsedAt,
	}
	sqlStr, args, err := builder.BuildInsert("sessions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return dbutil.Wrap("insert session", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, token string) (*model.Session, error) {
	where := map[string]interface{}{"token": token}
	sqlStr, args, err := builder.BuildSelect("sessions", where, []string{"token", "user_id", "expires_at", "last_used_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, dbutil.Wrap("select session", err)
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dbutil.Wrap("select session", err)
		}
		return nil, appErr.ErrNotFound
	}
	var session model.Session
	if err := rows.Scan(&session.Token, &session.UserID, &session.ExpiresAt, &session.LastUsedAt); err != nil {
		return nil, dbutil.Wrap("scan session", err)
	}
	return &session, nil
}

// Refresh pushes the rolling expiry forward. Concurrent refreshes are last
// write wins.
func (r *SessionRepo) Refresh(ctx context.Context, token string, expiresAt, lastUsedAt time.Time) error {
	const query = `UPDATE sessions SET expires_at = $1, last_used_at = $2 WHERE token = $3`
	if _, err := r.db.ExecContext(ctx, query, expiresAt, lastUsedAt, token); err != nil {
		return dbutil.Wrap("refresh session", err)
	}
	return nil
}

// Delete is a no-op for unknown tokens.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return dbutil.Wrap("delete session", err)
	}
	return nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, dbutil.Wrap("sweep sessions", err)
	}
	return res.RowsAffected()
}
