// Package memrepo keeps users, verification tokens and sessions in process
// memory. It honours the same contracts as the postgres repositories,
// including the compare-and-set on verification tokens, and is used for
// development mode and tests.
package memrepo

import (
	"context"
	"sync"
	"time"

	"github.com/xxxsen/magicauth/internal/model"
	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
)

type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[string]model.User), byEmail: make(map[string]string)}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return appErr.ErrConflict
	}
	if _, ok := r.byID[user.ID]; ok {
		return appErr.ErrConflict
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &user, nil
}

type VerificationTokenRepo struct {
	mu    sync.Mutex
	items map[string]model.VerificationToken
}

func NewVerificationTokenRepo() *VerificationTokenRepo {
	return &VerificationTokenRepo{items: make(map[string]model.VerificationToken)}
}

func (r *VerificationTokenRepo) Create(ctx context.Context, tok *model.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[tok.Token]; ok {
		return appErr.ErrConflict
	}
	r.items[tok.Token] = *tok
	return nil
}

func (r *VerificationTokenRepo) Get(ctx context.Context, token string) (*model.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[token]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &item, nil
}

func (r *VerificationTokenRepo) MarkUsed(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[token]
	if !ok || item.Used {
		return false, nil
	}
	item.Used = true
	r.items[token] = item
	return true, nil
}

func (r *VerificationTokenRepo) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, item := range r.items {
		if item.Used || item.ExpiresAt.Before(now) {
			delete(r.items, key)
			n++
		}
	}
	return n, nil
}

type SessionRepo struct {
	mu    sync.Mutex
	items map[string]model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{items: make(map[string]model.Session)}
}

func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[session.Token]; ok {
		return appErr.ErrConflict
	}
	r.items[session.Token] = *session
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, token string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[token]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &item, nil
}

func (r *SessionRepo) Refresh(ctx context.Context, token string, expiresAt, lastUsedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[token]
	if !ok {
		return nil
	}
	item.ExpiresAt = expiresAt
	item.LastUsedAt = lastUsedAt
	r.items[token] = item
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, token)
	return nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, item := range r.items {
		if item.ExpiresAt.Before(now) {
			delete(r.items, key)
			n++
		}
	}
	return n, nil
}
