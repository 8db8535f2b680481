package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/config"
	"github.com/xxxsen/magicauth/internal/handler"
	"github.com/xxxsen/magicauth/internal/job"
	"github.com/xxxsen/magicauth/internal/middleware"
	"github.com/xxxsen/magicauth/internal/schedule"
)

func runServer(cfg *config.Config, a *app) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database.Type),
		zap.String("cache", cfg.Cache.Type),
		zap.String("mail", cfg.Mail.Type),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Janitor.Disabled {
		scheduler := schedule.NewCronScheduler(schedule.WithRunTimeout(cfg.Janitor.Timeout()))
		if err := scheduler.AddJob(job.NewCredentialCleanupJob(a.janitor), cfg.Janitor.Spec); err != nil {
			return fmt.Errorf("schedule cleanup: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	deps := handler.RouterDeps{
		Auth:           handler.NewAuthHandler(a.issuer, a.verifier, a.revoker, a.userSvc, cfg.DevMode),
		Sessions:       a.validator,
		LoginRateLimit: cfg.Auth.LoginRateLimit(),
		DevMode:        cfg.DevMode,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.AccessLog(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))
	return serve(ctx, ln, engine, shutdownGrace)
}

const shutdownGrace = 15 * time.Second

// serve runs handler on ln until ctx is done, then drains in-flight requests
// for at most grace.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, grace time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logutil.GetLogger(context.Background()).Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
