package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/cache"
	"github.com/xxxsen/magicauth/internal/model"
	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
	"github.com/xxxsen/magicauth/internal/pkg/token"
)

// SessionValidator resolves a session token to its user id. The cache is
// consulted first; the store stays authoritative and a cache entry never
// lives longer than cacheTTL.
type SessionValidator struct {
	sessions        SessionStore
	cache           cache.SessionCache
	sessionTTL      time.Duration
	refreshInterval time.Duration
	cacheTTL        time.Duration
	now             func() time.Time
}

// NewSessionValidator accepts a nil cache, in which case every call goes to
// the store.
func NewSessionValidator(sessions SessionStore, c cache.SessionCache, sessionTTL, refreshInterval, cacheTTL time.Duration) *SessionValidator {
	return &SessionValidator{
		sessions:        sessions,
		cache:           c,
		sessionTTL:      sessionTTL,
		refreshInterval: refreshInterval,
		cacheTTL:        cacheTTL,
		now:             time.Now,
	}
}

// Validate returns "" with a nil error when the caller is not authenticated.
// Errors are reserved for store failures.
func (v *SessionValidator) Validate(ctx context.Context, tok string) (string, error) {
	check, err := v.Check(ctx, tok)
	if err != nil {
		return "", err
	}
	return check.UserID, nil
}

// Check is Validate plus the new expiry when the call rolled the session
// forward, so the caller can re-issue the cookie.
func (v *SessionValidator) Check(ctx context.Context, tok string) (model.SessionCheck, error) {
	var check model.SessionCheck
	if tok == "" {
		return check, nil
	}
	logger := logutil.GetLogger(ctx).With(zap.String("session", token.Redact(tok)))
	if v.cache != nil {
		userID, ok, err := v.cache.Get(ctx, tok)
		if err != nil {
			logger.Warn("session cache get failed", zap.Error(err))
		} else if ok {
			check.UserID = userID
			return check, nil
		}
	}

	session, err := v.sessions.Get(ctx, tok)
	if err != nil {
		if appErr.IsNotFound(err) {
			return check, nil
		}
		return check, err
	}
	now := v.now()
	if session.Expired(now) {
		if err := v.sessions.Delete(ctx, tok); err != nil {
			logger.Warn("delete expired session failed", zap.Error(err))
		}
		v.evict(ctx, tok)
		return check, nil
	}
	if session.NeedsRefresh(now, v.refreshInterval) {
		expiresAt := now.Add(v.sessionTTL)
		if err := v.sessions.Refresh(ctx, tok, expiresAt, now); err != nil {
			logger.Warn("refresh session failed", zap.Error(err))
		} else {
			check.RefreshedUntil = expiresAt
		}
	}
	if v.cache != nil {
		if err := v.cache.Set(ctx, tok, session.UserID, v.cacheTTL); err != nil {
			logger.Warn("session cache set failed", zap.Error(err))
		}
	}
	check.UserID = session.UserID
	return check, nil
}

func (v *SessionValidator) evict(ctx context.Context, tok string) {
	if v.cache == nil {
		return
	}
	if err := v.cache.Delete(ctx, tok); err != nil {
		logutil.GetLogger(ctx).Warn("session cache delete failed",
			zap.String("session", token.Redact(tok)),
			zap.Error(err),
		)
	}
}
