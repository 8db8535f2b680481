package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/cache"
	"github.com/xxxsen/magicauth/internal/config"
	"github.com/xxxsen/magicauth/internal/db"
	"github.com/xxxsen/magicauth/internal/mail"
	"github.com/xxxsen/magicauth/internal/repo"
	"github.com/xxxsen/magicauth/internal/repo/memrepo"
	"github.com/xxxsen/magicauth/internal/service"
)

type app struct {
	conn     *sql.DB
	redis    *cache.Redis
	cache    cache.SessionCache
	users    service.UserStore
	tokens   service.VerificationTokenStore
	sessions service.SessionStore
	sender   mail.Sender

	issuer    *service.TokenIssuer
	verifier  *service.TokenVerifier
	validator *service.SessionValidator
	revoker   *service.SessionRevoker
	userSvc   *service.UserService
	janitor   *service.Janitor
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	if err := a.initStores(ctx, cfg.Database); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initCache(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	a.sender = newSender(cfg.Mail)

	a.issuer = service.NewTokenIssuer(a.tokens, a.sender, cfg.BaseURL, cfg.Mail.Subject, cfg.Auth.VerificationTTL())
	a.verifier = service.NewTokenVerifier(a.tokens, a.users, a.sessions, cfg.Auth.SessionTTL())
	a.validator = service.NewSessionValidator(a.sessions, a.cache, cfg.Auth.SessionTTL(), cfg.Auth.RefreshInterval(), cfg.Auth.CacheTTL())
	a.revoker = service.NewSessionRevoker(a.sessions, a.cache)
	a.userSvc = service.NewUserService(a.users)
	a.janitor = service.NewJanitor(a.tokens, a.sessions)
	return a, nil
}

func (a *app) initStores(ctx context.Context, cfg config.DatabaseConfig) error {
	if cfg.Type == "memory" {
		logutil.GetLogger(ctx).Warn("using in-memory credential store, data is lost on restart")
		a.users = memrepo.NewUserRepo()
		a.tokens = memrepo.NewVerificationTokenRepo()
		a.sessions = memrepo.NewSessionRepo()
		return nil
	}
	conn, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	a.conn = conn
	if err := db.ApplyMigrations(ctx, conn); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	a.users = repo.NewUserRepo(conn)
	a.tokens = repo.NewVerificationTokenRepo(conn)
	a.sessions = repo.NewSessionRepo(conn)
	return nil
}

func (a *app) initCache(ctx context.Context, cfg *config.Config) error {
	switch cfg.Cache.Type {
	case "redis":
		rc, err := cache.NewRedis(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			return fmt.Errorf("init redis cache: %w", err)
		}
		a.redis = rc
		a.cache = rc
	case "memory":
		a.cache = cache.NewLRU(cfg.Cache.Size, cfg.Auth.CacheTTL())
	default:
		logutil.GetLogger(ctx).Info("session cache disabled")
	}
	return nil
}

func newSender(cfg config.MailConfig) mail.Sender {
	switch cfg.Type {
	case "resend":
		client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
		return mail.NewResendSender(client, cfg.ResendEndpoint, cfg.ResendAPIKey, cfg.From)
	case "log":
		return mail.NewLogSender()
	default:
		return mail.NewSMTPSender(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.From)
	}
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logutil.GetLogger(context.Background()).Warn("close redis failed", zap.Error(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			logutil.GetLogger(context.Background()).Warn("close db failed", zap.Error(err))
		}
	}
}
