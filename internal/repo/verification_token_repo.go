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

type VerificationTokenRepo struct {
	db *sql.DB
}

func NewVerificationTokenRepo(db *sql.DB) *VerificationTokenRepo {
	return &VerificationTokenRepo{db: db}
}

func (r *VerificationTokenRepo) Create(ctx context.Context, tok *model.VerificationToken) error {
	data := map[string]interface{}{
		"token":      tok.Token,
		"email":      tok.Email,
		"expires_at": tok.ExpiresAt,
		"used":       tok.Used,
	}
	sqlStr, args, err := builder.BuildInsert("verification_tokens", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return dbutil.Wrap("insert verification token", err)
	}
	return nil
}

func (r *VerificationTokenRepo) Get(ctx context.Context, token string) (*model.VerificationToken, error) {
	where := map[string]interface{}{"token": token}
	sqlStr, args, err := builder.BuildSelect("verification_tokens", where, []string{"token", "email", "expires_at", "used"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, dbutil.Wrap("select verification token", err)
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dbutil.Wrap("select verification token", err)
		}
		return nil, appErr.ErrNotFound
	}
	var item model.VerificationToken
	if err := rows.Scan(&item.Token, &item.Email, &item.ExpiresAt, &item.Used); err != nil {
		return nil, dbutil.Wrap("scan verification token", err)
	}
	return &item, nil
}

// MarkUsed flips used from false to true. It reports false when the row was
// missing or already used, which means a concurrent redemption won.
func (r *VerificationTokenRepo) MarkUsed(ctx context.Context, token string) (bool, error) {
	const query = `UPDATE verification_tokens SET used = TRUE WHERE token = $1 AND used = FALSE`
	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return false, dbutil.Wrap("mark verification token used", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, dbutil.Wrap("mark verification token used", err)
	}
	return affected == 1, nil
}

func (r *VerificationTokenRepo) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM verification_tokens WHERE expires_at < $1 OR used = TRUE`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, dbutil.Wrap("sweep verification tokens", err)
	}
	return res.RowsAffected()
}
