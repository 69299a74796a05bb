package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"freight-backend/internal/auth"
	"freight-backend/internal/config"
	"freight-backend/internal/database"
	"freight-backend/internal/logger"
	"freight-backend/internal/printing"
	"freight-backend/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Migrates the schema, then serves the API on HTTP_PORT until interrupted.`,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// bootstrap loads the configuration, builds the logger and opens a migrated database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout"})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building logger: %w", err)
	}
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	db, err := database.OpenPostgres(cfg.DatabaseDSN, log, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, log, _, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("schema is up to date")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var blacklist auth.TokenBlacklist = auth.NewMemoryBlacklist()
	if cfg.RedisAddr != "" {
		client, err := auth.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		blacklist = auth.NewRedisBlacklist(client)
		log.Info("token blacklist in redis", zap.String("addr", cfg.RedisAddr))
	} else {
		log.Warn("REDIS_ADDR is not set; revoked tokens are kept in memory")
	}

	deps := server.Deps{DB: db, Config: cfg, Log: log, Blacklist: blacklist}
	if cfg.PDFEnabled {
		renderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
			RemoteURL: cfg.ChromeURL,
			NoSandbox: true,
			Logger:    log,
		})
		defer renderer.Close()
		deps.Renderer = renderer
	}

	app := server.New(deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.HTTPPort))
		errCh <- app.Listen(":" + cfg.HTTPPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
