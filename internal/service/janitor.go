package service

import (
	"context"
	"time"

	"github.com/xxxsen/magicauth/internal/model"
)

// Janitor purges dead credentials from the store. It never touches the
// session cache; cache entries lapse on their own TTL.
type Janitor struct {
	tokens   VerificationTokenStore
	sessions SessionStore
	now      func() time.Time
}

func NewJanitor(tokens VerificationTokenStore, sessions SessionStore) *Janitor {
	return &Janitor{tokens: tokens, sessions: sessions, now: time.Now}
}

func (j *Janitor) Sweep(ctx context.Context) (model.SweepResult, error) {
	var res model.SweepResult
	now := j.now()
	n, err := j.tokens.DeleteExpiredOrUsed(ctx, now)
	if err != nil {
		return res, err
	}
	res.Tokens = n
	n, err = j.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return res, err
	}
	res.Sessions = n
	return res, nil
}
