package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/magicauth/internal/config"
	"github.com/xxxsen/magicauth/internal/db"
	"github.com/xxxsen/magicauth/internal/job"
	"github.com/xxxsen/magicauth/internal/schedule"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "magicauth",
		Short: "passwordless magic-link auth server",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the auth server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			app, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return runServer(cfg, app)
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "delete expired or used tokens and expired sessions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			app, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return schedule.RunOnce(cmd.Context(), job.NewCredentialCleanupJob(app.janitor))
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.Database.Type != "postgres" {
				return fmt.Errorf("migrate requires database.type postgres")
			}
			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer conn.Close()
			if err := db.ApplyMigrations(cmd.Context(), conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			logutil.GetLogger(cmd.Context()).Info("migrations applied")
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, migrateCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded",
		zap.String("config", path),
		zap.Bool("dev_mode", cfg.DevMode),
	)
	return cfg, nil
}
