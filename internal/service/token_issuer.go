package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/mail"
	"github.com/xxxsen/magicauth/internal/model"
	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
	"github.com/xxxsen/magicauth/internal/pkg/token"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return len(email) <= 254 && emailRegex.MatchString(email)
}

// TokenIssuer mints verification tokens and mails them as sign-in links.
// Every call mints a fresh token; outstanding tokens for the same address
// stay valid.
type TokenIssuer struct {
	tokens  VerificationTokenStore
	sender  mail.Sender
	baseURL string
	subject string
	ttl     time.Duration
	now     func() time.Time
}

func NewTokenIssuer(tokens VerificationTokenStore, sender mail.Sender, baseURL, subject string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		tokens:  tokens,
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		subject: subject,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue persists a new token for email and sends the link. origin is the
// scheme://host of the incoming request and is only used when no base URL is
// configured. A delivery failure is reported as ErrDeliveryFailed after the
// token row has been written.
func (s *TokenIssuer) Issue(ctx context.Context, email, origin string) error {
	email = strings.TrimSpace(email)
	if !IsValidEmail(email) {
		return appErr.ErrInvalidEmail
	}
	tok, err := token.Generate()
	if err != nil {
		return err
	}
	item := &model.VerificationToken{
		Token:     tok,
		Email:     strings.ToLower(email),
		ExpiresAt: s.now().Add(s.ttl),
		Used:      false,
	}
	if err := s.tokens.Create(ctx, item); err != nil {
		return err
	}
	link, err := s.signInURL(tok, origin)
	if err != nil {
		return err
	}
	body, err := mail.RenderMagicLink(link, s.ttl)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, email, s.subject, body); err != nil {
		logutil.GetLogger(ctx).Error("send magic link failed",
			zap.String("email", item.Email),
			zap.String("token", token.Redact(tok)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", appErr.ErrDeliveryFailed, err)
	}
	logutil.GetLogger(ctx).Info("magic link sent", zap.String("email", item.Email), zap.String("token", token.Redact(tok)))
	return nil
}

func (s *TokenIssuer) signInURL(tok, origin string) (string, error) {
	base := s.baseURL
	if base == "" {
		base = strings.TrimRight(origin, "/")
	}
	u, err := url.Parse(base + "/auth/verify")
	if err != nil {
		return "", fmt.Errorf("build sign-in url: %w", err)
	}
	q := u.Query()
	q.Set("token", tok)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
