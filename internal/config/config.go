package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	// SQLite database file holding users, categories, expenses, budgets.
	DBPath string

	// Session preference file (env format), outside the relational schema.
	SessionPath string

	// Directory receipt photo copies are stored in.
	ReceiptsDir string

	// Log level: debug, info, warn, error.
	LogLevel string
}

func Load() *Config {
	return &Config{
		DBPath:      getEnv("BUDGET_DB_PATH", "./data/budget.db"),
		SessionPath: getEnv("BUDGET_SESSION_PATH", "./data/session.env"),
		ReceiptsDir: getEnv("BUDGET_RECEIPTS_DIR", "./data/receipts"),
		LogLevel:    getEnv("BUDGET_LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration, accumulating every problem into
// one error.
func (c *Config) Validate() error {
	var errors []string

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	} else if err := ensureDir(filepath.Dir(c.DBPath)); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create database directory: %v", err))
	}

	if c.SessionPath == "" {
		errors = append(errors, "session file path cannot be empty")
	} else if err := ensureDir(filepath.Dir(c.SessionPath)); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create session directory: %v", err))
	}

	if c.ReceiptsDir == "" {
		errors = append(errors, "receipts directory cannot be empty")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ParseLevel maps a config level name onto slog's levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", level)
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
