package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/model"
	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
	"github.com/xxxsen/magicauth/internal/pkg/token"
)

type RedeemResult struct {
	Session *model.Session
	User    *model.User
}

// TokenVerifier redeems a verification token at most once and opens a
// session for its owner.
type TokenVerifier struct {
	tokens     VerificationTokenStore
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

func NewTokenVerifier(tokens VerificationTokenStore, users UserStore, sessions SessionStore, sessionTTL time.Duration) *TokenVerifier {
	return &TokenVerifier{
		tokens:     tokens,
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Redeem returns ErrTokenInvalid for unknown, used and expired tokens alike.
func (s *TokenVerifier) Redeem(ctx context.Context, tok string) (*RedeemResult, error) {
	if tok == "" {
		return nil, appErr.ErrTokenInvalid
	}
	item, err := s.tokens.Get(ctx, tok)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrTokenInvalid
		}
		return nil, err
	}
	now := s.now()
	if item.Used || item.Expired(now) {
		return nil, appErr.ErrTokenInvalid
	}
	won, err := s.tokens.MarkUsed(ctx, tok)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, appErr.ErrTokenInvalid
	}

	user, err := s.findOrCreateUser(ctx, strings.ToLower(item.Email), now)
	if err != nil {
		return nil, err
	}
	sessionToken, err := token.Generate()
	if err != nil {
		return nil, err
	}
	session := &model.Session{
		Token:      sessionToken,
		UserID:     user.ID,
		ExpiresAt:  now.Add(s.sessionTTL),
		LastUsedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("session created",
		zap.String("user_id", user.ID),
		zap.String("session", token.Redact(sessionToken)),
	)
	return &RedeemResult{Session: session, User: user}, nil
}

func (s *TokenVerifier) findOrCreateUser(ctx context.Context, email string, now time.Time) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !appErr.IsNotFound(err) {
		return nil, err
	}
	user = &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
	}
	err = s.users.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, appErr.ErrConflict) {
		// another redemption for the same address created the user first
		return s.users.GetByEmail(ctx, email)
	}
	return nil, err
}
