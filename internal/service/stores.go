package service

import (
	"context"
	"time"

	"github.com/xxxsen/magicauth/internal/model"
)

// The store contracts below are satisfied by both repo (postgres) and
// repo/memrepo. Lookups return appErr.ErrNotFound for missing rows.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
}

type VerificationTokenStore interface {
	Create(ctx context.Context, tok *model.VerificationToken) error
	Get(ctx context.Context, token string) (*model.VerificationToken, error)
	// MarkUsed must be an atomic compare-and-set from used=false to used=true.
	MarkUsed(ctx context.Context, token string) (bool, error)
	DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, token string) (*model.Session, error)
	Refresh(ctx context.Context, token string, expiresAt, lastUsedAt time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
