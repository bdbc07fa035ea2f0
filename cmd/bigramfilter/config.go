package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/charset"
	"github.com/verte-zerg/bigramfilter/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# bigramfilter configuration
# Uncomment a value to enable it. CLI flags override config values.

[model]
# corpus = "https://www.gutenberg.org/files/98/98-0.txt"  # Local file or URL
# load = false            # Treat corpus as a precomputed matrix
# name = "en"             # Stored model (see: bigramfilter train)
# charset = %q

[filter]
# policy = %q       # weighted or occurrence
# min = %g              # Score threshold or rare-pair probability
# max-occurrences = %d      # Rare pairs that mark a word as hashed
# min-count = %d           # Raw count below which a pair is rare
# auto-min = false        # Derive the threshold from the corpus size
# unique = false          # Only print unique results
# cache-size = %d       # Memoized word scores
`,
		charset.Default,
		bigram.PolicyWeighted,
		bigram.DefaultMinProbability,
		bigram.DefaultMaxOccurrences,
		bigram.DefaultMinCount,
		bigram.DefaultCacheSize,
	)
}
