package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xxxsen/magicauth/internal/model"
	"github.com/xxxsen/magicauth/internal/repo/memrepo"
)

var errBoom = errors.New("boom")

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (s *fakeSender) last() sentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

// countingSessions wraps the in-memory session store with call counters and
// injectable failures.
type countingSessions struct {
	*memrepo.SessionRepo
	gets       atomic.Int32
	refreshes  atomic.Int32
	getErr     error
	refreshErr error
	deleteErr  error
}

func newCountingSessions() *countingSessions {
	return &countingSessions{SessionRepo: memrepo.NewSessionRepo()}
}

func (s *countingSessions) Get(ctx context.Context, token string) (*model.Session, error) {
	s.gets.Add(1)
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.SessionRepo.Get(ctx, token)
}

func (s *countingSessions) Refresh(ctx context.Context, token string, expiresAt, lastUsedAt time.Time) error {
	s.refreshes.Add(1)
	if s.refreshErr != nil {
		return s.refreshErr
	}
	return s.SessionRepo.Refresh(ctx, token, expiresAt, lastUsedAt)
}

func (s *countingSessions) Delete(ctx context.Context, token string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.SessionRepo.Delete(ctx, token)
}

type cacheItem struct {
	userID   string
	deadline time.Time
}

// fakeCache honours TTLs against the shared test clock.
type fakeCache struct {
	mu        sync.Mutex
	clock     *testClock
	items     map[string]cacheItem
	getErr    error
	setErr    error
	deleteErr error
}

func newFakeCache(clock *testClock) *fakeCache {
	return &fakeCache{clock: clock, items: make(map[string]cacheItem)}
}

func (c *fakeCache) Get(ctx context.Context, token string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	item, ok := c.items[token]
	if !ok || !c.clock.Now().Before(item.deadline) {
		delete(c.items, token)
		return "", false, nil
	}
	return item.userID, true, nil
}

func (c *fakeCache) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.items[token] = cacheItem{userID: userID, deadline: c.clock.Now().Add(ttl)}
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.items, token)
	return nil
}

func (c *fakeCache) has(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[token]
	return ok
}

const (
	testVerificationTTL = 15 * time.Minute
	testSessionTTL      = 30 * 24 * time.Hour
	testRefresh         = time.Hour
	testCacheTTL        = 10 * time.Minute
)

// authFixture wires every component over shared in-memory stores.
type authFixture struct {
	clock     *testClock
	tokens    *memrepo.VerificationTokenRepo
	users     *memrepo.UserRepo
	sessions  *countingSessions
	cache     *fakeCache
	sender    *fakeSender
	issuer    *TokenIssuer
	verifier  *TokenVerifier
	validator *SessionValidator
	revoker   *SessionRevoker
	janitor   *Janitor
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		clock:    newTestClock(),
		tokens:   memrepo.NewVerificationTokenRepo(),
		users:    memrepo.NewUserRepo(),
		sessions: newCountingSessions(),
		sender:   &fakeSender{},
	}
	f.cache = newFakeCache(f.clock)
	f.issuer = NewTokenIssuer(f.tokens, f.sender, "https://app.example.com", "Sign in", testVerificationTTL)
	f.issuer.now = f.clock.Now
	f.verifier = NewTokenVerifier(f.tokens, f.users, f.sessions, testSessionTTL)
	f.verifier.now = f.clock.Now
	f.validator = NewSessionValidator(f.sessions, f.cache, testSessionTTL, testRefresh, testCacheTTL)
	f.validator.now = f.clock.Now
	f.revoker = NewSessionRevoker(f.sessions, f.cache)
	f.janitor = NewJanitor(f.tokens, f.sessions)
	f.janitor.now = f.clock.Now
	return f
}

// issueToken issues a link for email and returns the minted token.
func (f *authFixture) issueToken(ctx context.Context, email string) (string, error) {
	if err := f.issuer.Issue(ctx, email, ""); err != nil {
		return "", err
	}
	return tokenFromMail(f.sender.last().HTML), nil
}

func tokenFromMail(html string) string {
	idx := strings.Index(html, "token=")
	if idx < 0 {
		return ""
	}
	rest := html[idx+len("token="):]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !strings.ContainsRune("0123456789abcdef", r)
	})
	if end < 0 {
		return rest
	}
	return rest[:end]
}
