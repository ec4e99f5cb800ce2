package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	SaveDir      string `env:"PLANNER_SAVE_DIR" envDefault:".saves"`
	Storage      string `env:"PLANNER_STORAGE" envDefault:"file"`
	SQLitePath   string `env:"PLANNER_SQLITE_PATH" envDefault:".saves/planner.db"`
	ShareBaseURL string `env:"PLANNER_SHARE_BASE_URL" envDefault:"https://spicy-techs.app/"`
	ShortlinkURL string `env:"PLANNER_SHORTLINK_URL"`
	LogFile      string `env:"PLANNER_LOG_FILE" envDefault:"planner.log"`
	LogLevel     string `env:"PLANNER_LOG_LEVEL" envDefault:"info"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.Storage {
	case "file", "sqlite":
	default:
		return nil, fmt.Errorf("PLANNER_STORAGE must be file or sqlite, got %q", cfg.Storage)
	}
	return &cfg, nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// AdvisorEnabled reports whether a Gemini key is configured.
func (c *Config) AdvisorEnabled() bool {
	return c.GeminiAPIKey != ""
}
