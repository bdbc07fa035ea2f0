package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Model.Corpus != nil || cfg.Filter.MinProbability != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[model]
corpus = "https://example.com/corpus.txt"
load = true

[filter]
min = 0.0005
policy = "occurrence"
max-occurrences = 2
unique = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Model.Corpus == nil || *cfg.Model.Corpus != "https://example.com/corpus.txt" {
		t.Fatalf("unexpected corpus: %v", cfg.Model.Corpus)
	}
	if cfg.Model.Load == nil || !*cfg.Model.Load {
		t.Fatalf("expected load=true")
	}
	if cfg.Filter.MinProbability == nil || *cfg.Filter.MinProbability != 0.0005 {
		t.Fatalf("unexpected min: %v", cfg.Filter.MinProbability)
	}
	if cfg.Filter.MaxOccurrences == nil || *cfg.Filter.MaxOccurrences != 2 {
		t.Fatalf("unexpected max-occurrences")
	}
	if cfg.Model.Charset != nil {
		t.Fatalf("unexpected charset")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[filter]\nthreshold = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	for _, key := range []string{"BIGRAMFILTER_FETCH_TIMEOUT", "BIGRAMFILTER_LOG_LEVEL", "BIGRAMFILTER_DB", "BIGRAMFILTER_MAX_CORPUS_BYTES"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.FetchTimeout != 60*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.FetchTimeout)
	}
	if cfg.MaxCorpusBytes != 256<<20 {
		t.Fatalf("unexpected max bytes: %d", cfg.MaxCorpusBytes)
	}
	if cfg.DBPath == "" {
		t.Fatalf("expected default db path")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BIGRAMFILTER_FETCH_TIMEOUT", "5s")
	t.Setenv("BIGRAMFILTER_LOG_LEVEL", "debug")
	t.Setenv("BIGRAMFILTER_NO_CACHE", "true")
	t.Setenv("BIGRAMFILTER_DB", "/tmp/x.db")
	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.FetchTimeout != 5*time.Second || !cfg.NoCache || cfg.DBPath != "/tmp/x.db" {
		t.Fatalf("unexpected env config: %+v", cfg)
	}
	lvl, err := cfg.SlogLevel()
	if err != nil || lvl != slog.LevelDebug {
		t.Fatalf("unexpected level %v (%v)", lvl, err)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "bigramfilter", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "bigramfilter", "bigramfilter.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}
