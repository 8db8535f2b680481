package model

import "time"

type Session struct {
	Token      string    `json:"-"`
	UserID     string    `json:"user_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// NeedsRefresh reports whether more than interval has passed since the
// session's expiry was last pushed forward.
func (s *Session) NeedsRefresh(now time.Time, interval time.Duration) bool {
	return now.Sub(s.LastUsedAt) > interval
}

// SessionCheck is the outcome of validating a session token. UserID is empty
// when the caller is not authenticated. RefreshedUntil is set only when the
// check pushed the session's expiry forward.
type SessionCheck struct {
	UserID         string
	RefreshedUntil time.Time
}

func (c SessionCheck) Refreshed() bool {
	return !c.RefreshedUntil.IsZero()
}
