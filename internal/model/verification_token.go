package model

import "time"

// VerificationToken is the single-use secret embedded in a magic link.
type VerificationToken struct {
	Token     string    `json:"-"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
