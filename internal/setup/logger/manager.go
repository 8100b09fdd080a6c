// Package logger manages the application's log files and directories. It
// keeps timestamped session directories plus a "latest" directory for easy
// tailing.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atendix/atendix/internal/setup/config"
)

// Manager handles the creation and rotation of log directories.
type Manager struct {
	currentSessionDir string
	logDir            string
	level             string
	maxLogsToKeep     int
}

// NewManager creates a new Manager instance.
func NewManager(logDir string, cfg *config.Debug) *Manager {
	return &Manager{
		logDir:        logDir,
		level:         cfg.LogLevel,
		maxLogsToKeep: cfg.MaxLogsToKeep,
	}
}

// GetLoggers initializes the main and database loggers. Both write to the
// session directory, the latest directory, and stderr.
func (lm *Manager) GetLoggers() (*zap.Logger, *zap.Logger, error) {
	if err := lm.setupLogDirectories(); err != nil {
		return nil, nil, err
	}

	mainLogger, err := lm.initLogger([]string{
		filepath.Join(lm.currentSessionDir, "main.log"),
		filepath.Join(lm.logDir, "latest", "main.log"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	dbLogger, err := lm.initLogger([]string{
		filepath.Join(lm.currentSessionDir, "database.log"),
		filepath.Join(lm.logDir, "latest", "database.log"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database logger: %w", err)
	}

	return mainLogger, dbLogger, nil
}

// setupLogDirectories ensures the base directory exists, rotates old
// sessions, and prepares the session and latest directories.
func (lm *Manager) setupLogDirectories() error {
	if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := lm.rotateLogSessions(); err != nil {
		return fmt.Errorf("failed to rotate log sessions: %w", err)
	}

	lm.currentSessionDir = filepath.Join(lm.logDir, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(lm.currentSessionDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	latestDir := filepath.Join(lm.logDir, "latest")
	// The latest directory may be held open by a tail process.
	_ = os.RemoveAll(latestDir)

	if err := os.MkdirAll(latestDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create latest directory: %w", err)
	}

	return nil
}

// initLogger creates a zap logger writing to the given paths plus stderr.
func (lm *Manager) initLogger(logPaths []string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	cores := make([]zapcore.Core, 0, len(logPaths)+1)
	for _, path := range logPaths {
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), zapLevel))
	}
	cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapLevel))

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Development(),
	), nil
}

// rotateLogSessions removes old session directories, keeping only the most
// recent maxLogsToKeep.
func (lm *Manager) rotateLogSessions() error {
	entries, err := os.ReadDir(lm.logDir)
	if err != nil {
		return fmt.Errorf("failed to read logs directory: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() != "latest" {
			sessions = append(sessions, entry.Name())
		}
	}
	if len(sessions) < lm.maxLogsToKeep {
		return nil
	}

	sort.Strings(sessions)
	for _, name := range sessions[:len(sessions)-lm.maxLogsToKeep+1] {
		if err := os.RemoveAll(filepath.Join(lm.logDir, name)); err != nil {
			return fmt.Errorf("failed to remove old session %s: %w", name, err)
		}
	}
	return nil
}
