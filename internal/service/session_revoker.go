package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/cache"
	"github.com/xxxsen/magicauth/internal/pkg/token"
)

type SessionRevoker struct {
	sessions SessionStore
	cache    cache.SessionCache
}

func NewSessionRevoker(sessions SessionStore, c cache.SessionCache) *SessionRevoker {
	return &SessionRevoker{sessions: sessions, cache: c}
}

// Revoke deletes the session row, then evicts the cache entry. Unknown tokens
// are a no-op. Only the store delete can fail the call; a failed eviction is
// logged and the stale entry lapses with the cache TTL.
func (r *SessionRevoker) Revoke(ctx context.Context, tok string) error {
	if tok == "" {
		return nil
	}
	if err := r.sessions.Delete(ctx, tok); err != nil {
		return err
	}
	if r.cache != nil {
		if err := r.cache.Delete(ctx, tok); err != nil {
			logutil.GetLogger(ctx).Warn("session cache delete failed",
				zap.String("session", token.Redact(tok)),
				zap.Error(err),
			)
		}
	}
	return nil
}
