// Package app wires configuration, logging, storage, the optional cache,
// and the HTTP server into a runnable application.
package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/linksmith/linksmith/internal/cache"
	"github.com/linksmith/linksmith/internal/config"
	"github.com/linksmith/linksmith/internal/db"
	"github.com/linksmith/linksmith/internal/server"
	"github.com/linksmith/linksmith/internal/shortener"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DBPool  *pgxpool.Pool
	Cache   *cache.RedisCache // nil when disabled
	Server  *server.Server
	Handler *shortener.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application", "env", cfg.App.Environment)

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)
	dbPool, err := db.Connect(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database ready")

	var redisCache *cache.RedisCache
	var svcCache shortener.Cache
	if cfg.Cache.Enabled {
		redisCache, err = cache.New(ctx, cfg.Cache.URL, cfg.Cache.TTL, logger)
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		svcCache = redisCache
		logger.Info("link cache enabled", "ttl", cfg.Cache.TTL.String())
	}

	repo := shortener.NewRepository(dbPool, nil)
	svc := shortener.NewService(repo, &shortener.ServiceConfig{
		SlugLength:     cfg.Shortener.SlugLength,
		SlugMaxRetries: cfg.Shortener.SlugMaxRetries,
		Cache:          svcCache,
	})
	handler := shortener.NewHandler(shortener.HandlerConfig{
		Service: svc,
		Logger:  logger,
		BaseURL: cfg.Server.BaseURL,
	})

	srv := server.New(cfg, logger, handler)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DBPool:  dbPool,
		Cache:   redisCache,
		Server:  srv,
		Handler: handler,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("failed to close redis client", "error", err.Error())
		}
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
