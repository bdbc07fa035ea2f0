package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

// EnvConfig holds runtime settings read from the environment.
type EnvConfig struct {
	FetchTimeout   time.Duration `env:"BIGRAMFILTER_FETCH_TIMEOUT" envDefault:"60s"`
	MaxCorpusBytes int64         `env:"BIGRAMFILTER_MAX_CORPUS_BYTES" envDefault:"268435456"`
	LogLevel       string        `env:"BIGRAMFILTER_LOG_LEVEL" envDefault:"warn"`
	NoCache        bool          `env:"BIGRAMFILTER_NO_CACHE"`
	DBPath         string        `env:"BIGRAMFILTER_DB"`
}

// LoadEnv parses EnvConfig from the process environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.FetchTimeout <= 0 {
		return EnvConfig{}, fmt.Errorf("BIGRAMFILTER_FETCH_TIMEOUT must be > 0")
	}
	if cfg.MaxCorpusBytes <= 0 {
		return EnvConfig{}, fmt.Errorf("BIGRAMFILTER_MAX_CORPUS_BYTES must be > 0")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level.
func (c EnvConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", c.LogLevel)
}
