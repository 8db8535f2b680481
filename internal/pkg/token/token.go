// Package token mints the opaque random strings used for verification links
// and session cookies.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Bytes is the amount of entropy in every token. Rendered as hex, a token is
// always 2*Bytes characters long.
const Bytes = 32

// Length is the rendered token length.
const Length = Bytes * 2

func Generate() (string, error) {
	buf := make([]byte, Bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Redact keeps a short prefix of a token, enough to correlate log lines.
func Redact(tok string) string {
	if len(tok) <= 8 {
		return "***"
	}
	return tok[:8] + "..."
}
