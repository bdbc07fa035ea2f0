// Package main provides the CLI entrypoint for bigramfilter.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/charset"
	"github.com/verte-zerg/bigramfilter/internal/config"
	"github.com/verte-zerg/bigramfilter/internal/corpus"
	"github.com/verte-zerg/bigramfilter/internal/model"
	"github.com/verte-zerg/bigramfilter/internal/store"
)

var (
	rootCorpus    string
	rootLoad      bool
	rootModelName string
	rootCharset   string

	// Set once per invocation by the persistent pre-run.
	runtimeEnv config.EnvConfig
	fileCfg    config.FileConfig
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bigramfilter",
		Short: "Split wordlists into cleartext and hashed words using bigram statistics",
		Long: `bigramfilter learns how often each pair of adjacent characters occurs in a
corpus and scores words against those statistics. Natural-language words
score high; hashes, base64 blobs and random tokens score low.`,
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootCorpus, "corpus", "c", "", "local file or URL to build the matrix from")
	flags.BoolVarP(&rootLoad, "load", "l", false, "treat --corpus as a precomputed matrix instead of text")
	flags.StringVarP(&rootModelName, "model", "m", "", "use a model stored with 'train'")
	flags.StringVar(&rootCharset, "charset", charset.Default, "characters tracked by the matrix")

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newSplitCmd(model.Cleartext))
	rootCmd.AddCommand(newSplitCmd(model.Hashed))
	rootCmd.AddCommand(newMatrixCmd())
	rootCmd.AddCommand(newTopCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newCalibrateCmd())
	rootCmd.AddCommand(newExploreCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func log() *slog.Logger {
	return slog.With("component", "cli")
}

func setupCmd(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	runtimeEnv = env
	level, err := env.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// The config command must open even when the file does not parse.
	if cmd.Name() == "config" {
		return nil
	}
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = cfg
	applyFileConfig(cmd, cfg)
	return nil
}

func applyFileConfig(cmd *cobra.Command, cfg config.FileConfig) {
	applyStringConfig(cmd, "corpus", &rootCorpus, cfg.Model.Corpus)
	applyBoolConfig(cmd, "load", &rootLoad, cfg.Model.Load)
	applyStringConfig(cmd, "model", &rootModelName, cfg.Model.Name)
	applyStringConfig(cmd, "charset", &rootCharset, cfg.Model.Charset)
	// An explicit --corpus beats a configured model name.
	if cmd.Flags().Changed("corpus") && !cmd.Flags().Changed("model") {
		rootModelName = ""
	}

	applyStringConfig(cmd, "policy", &filterPolicy, cfg.Filter.Policy)
	applyFloatConfig(cmd, "min", &filterMin, cfg.Filter.MinProbability)
	applyIntConfig(cmd, "max-occurrences", &filterMaxOccurrences, cfg.Filter.MaxOccurrences)
	applyIntConfig(cmd, "min-count", &filterMinCount, cfg.Filter.MinCount)
	applyBoolConfig(cmd, "auto-min", &filterAutoMin, cfg.Filter.AutoMin)
	applyBoolConfig(cmd, "unique", &filterUnique, cfg.Filter.Unique)
	applyIntConfig(cmd, "cache-size", &filterCacheSize, cfg.Filter.CacheSize)
}

// resolveModel builds or loads the matrix selected by the persistent flags.
// Any failure is fatal: no command runs against a partial or all-zero model.
func resolveModel(ctx context.Context) (*bigram.Model, model.Source, error) {
	src := model.Source{
		Corpus:  rootCorpus,
		Load:    rootLoad,
		Name:    rootModelName,
		Charset: rootCharset,
	}
	m, err := obtainModel(ctx, src)
	if err != nil {
		return nil, src, err
	}
	if m.Empty() {
		return nil, src, fmt.Errorf("%s: %w", src.Label(), bigram.ErrNoTransitions)
	}
	return m, src, nil
}

func obtainModel(ctx context.Context, src model.Source) (*bigram.Model, error) {
	if src.Name != "" {
		return loadStoredModel(ctx, src.Name)
	}
	if src.Corpus == "" {
		return nil, errors.New("--corpus or --model is required")
	}

	text, err := corpus.Fetch(ctx, src.Corpus, corpusOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	if src.Load {
		m, err := bigram.Load(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("failed to load matrix %s: %w", src.Corpus, err)
		}
		log().Debug("matrix loaded", "source", src.Corpus, "charset", m.Charset().String())
		return m, nil
	}

	cs, err := charset.Parse(src.Charset)
	if err != nil {
		return nil, fmt.Errorf("invalid --charset: %w", err)
	}
	m := bigram.AnalyzeString(cs, text)
	log().Info("matrix built", "source", src.Corpus, "transitions", m.Total())
	return m, nil
}

func loadStoredModel(ctx context.Context, name string) (*bigram.Model, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore(st)
	m, info, err := st.LoadModel(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrModelNotFound) {
			return nil, fmt.Errorf("model %q not found (list with: bigramfilter models)", name)
		}
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	log().Debug("model loaded", "name", info.Name, "transitions", info.Total)
	return m, nil
}

func corpusOptions() corpus.Options {
	opts := corpus.Options{
		Timeout:  runtimeEnv.FetchTimeout,
		MaxBytes: runtimeEnv.MaxCorpusBytes,
	}
	if !runtimeEnv.NoCache {
		opts.CacheDir = config.DefaultCorpusCacheDir()
	}
	return opts
}

func openStore() (*store.Store, error) {
	path := runtimeEnv.DBPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
