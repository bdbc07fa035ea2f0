// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Model  ModelConfig  `toml:"model"`
	Filter FilterConfig `toml:"filter"`
}

// ModelConfig maps settings that select the transition matrix.
type ModelConfig struct {
	Corpus  *string `toml:"corpus"`
	Load    *bool   `toml:"load"`
	Name    *string `toml:"name"`
	Charset *string `toml:"charset"`
}

// FilterConfig maps classification settings.
type FilterConfig struct {
	Policy         *string  `toml:"policy"`
	MinProbability *float64 `toml:"min"`
	MaxOccurrences *int     `toml:"max-occurrences"`
	MinCount       *int     `toml:"min-count"`
	AutoMin        *bool    `toml:"auto-min"`
	Unique         *bool    `toml:"unique"`
	CacheSize      *int     `toml:"cache-size"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
