// Package cache holds the session cache: an acceleration layer mapping a
// session token to the owning user id. It is never the record of truth.
package cache

import (
	"context"
	"time"
)

const keyPrefix = "session:"

type SessionCache interface {
	// Get reports ok=false on a miss. A miss is not an error.
	Get(ctx context.Context, token string) (userID string, ok bool, err error)
	Set(ctx context.Context, token, userID string, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

func sessionKey(token string) string {
	return keyPrefix + token
}

type entry struct {
	UserID string `json:"userId"`
}
