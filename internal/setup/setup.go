// Package setup bootstraps the application's shared dependencies.
package setup

import (
	"context"

	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/ai"
	"github.com/atendix/atendix/internal/setup/config"
	"github.com/atendix/atendix/internal/setup/logger"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/jsonfile"
	"github.com/atendix/atendix/internal/storage/postgres"
)

// App bundles the core dependencies the bot and the API server share.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DBLogger *zap.Logger
	Store    storage.Client
	AI       *ai.Client
}

// InitializeApp bootstraps the dependencies in order: config, logging,
// storage, AI.
func InitializeApp(ctx context.Context, logDir string) (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logManager := logger.NewManager(logDir, &cfg.Debug)
	mainLogger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}
	mainLogger.Info("Loaded configuration", zap.String("config_dir", configDir))

	// PostgreSQL when configured, otherwise the JSON-file fallback.
	var store storage.Client
	if cfg.PostgreSQL.Host != "" {
		store, err = postgres.New(ctx, &cfg.PostgreSQL, dbLogger, true)
		if err != nil {
			return nil, err
		}
	} else {
		mainLogger.Warn("PostgreSQL is not configured, using JSON file storage",
			zap.String("path", cfg.Storage.FilePath))
		store, err = jsonfile.New(cfg.Storage.FilePath, dbLogger)
		if err != nil {
			return nil, err
		}
	}

	aiClient := ai.NewClient(&cfg.OpenAI, mainLogger)
	if !aiClient.Enabled() {
		mainLogger.Warn("OpenAI API key is not configured, AI replies are disabled")
	}

	return &App{
		Config:   cfg,
		Logger:   mainLogger,
		DBLogger: dbLogger,
		Store:    store,
		AI:       aiClient,
	}, nil
}

// Cleanup releases the application's resources in reverse order.
func (a *App) Cleanup() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("Failed to close storage", zap.Error(err))
	}

	_ = a.Logger.Sync()
	_ = a.DBLogger.Sync()
}
