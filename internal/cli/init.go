// Package cli consolidates the initialization every binary repeats:
// logger, env file, store and session wiring.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	applog "budget/internal/log"
	"budget/internal/session"
	"budget/internal/storage"
)

// SetupLogger initializes structured logging at the given level and
// sets it as the default logger.
func SetupLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With(applog.FieldComponent, applog.ComponentApp)
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// OpenStore opens the SQLite store at the configured path, exiting
// the process on failure.
func OpenStore(logger *slog.Logger, dbPath string) *storage.Store {
	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open store", applog.FieldError, err, applog.FieldPath, dbPath)
		os.Exit(1)
	}
	return store
}

// NewSessionManager builds the session manager for the configured
// preferences file.
func NewSessionManager(path string) *session.Manager {
	return session.NewManager(path)
}
