package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type lruItem struct {
	userID   string
	deadline time.Time
}

// LRU is an in-process SessionCache. Entries carry their own deadline so a
// Set with a TTL shorter than the LRU-wide one is honoured.
type LRU struct {
	cache *expirable.LRU[string, lruItem]
	now   func() time.Time
}

func NewLRU(size int, maxTTL time.Duration) *LRU {
	if size <= 0 {
		size = 10000
	}
	return &LRU{
		cache: expirable.NewLRU[string, lruItem](size, nil, maxTTL),
		now:   time.Now,
	}
}

func (l *LRU) Get(ctx context.Context, token string) (string, bool, error) {
	key := sessionKey(token)
	item, ok := l.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	if !l.now().Before(item.deadline) {
		l.cache.Remove(key)
		return "", false, nil
	}
	return item.userID, true, nil
}

func (l *LRU) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	l.cache.Add(sessionKey(token), lruItem{userID: userID, deadline: l.now().Add(ttl)})
	return nil
}

func (l *LRU) Delete(ctx context.Context, token string) error {
	l.cache.Remove(sessionKey(token))
	return nil
}

func (l *LRU) Len() int {
	return l.cache.Len()
}
