package main

import (
	"errors"
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/filter"
	"github.com/verte-zerg/bigramfilter/internal/model"
	"github.com/verte-zerg/bigramfilter/internal/tui"
)

var (
	filterPolicy         string
	filterMin            float64
	filterMaxOccurrences int
	filterMinCount       int
	filterAutoMin        bool
	filterUnique         bool
	filterRecord         bool
	filterCacheSize      int

	scoreJSON bool
)

func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterPolicy, "policy", string(bigram.PolicyWeighted), "classification policy: weighted or occurrence")
	cmd.Flags().Float64Var(&filterMin, "min", bigram.DefaultMinProbability, "score threshold (weighted) or rare-pair probability (occurrence)")
	cmd.Flags().IntVar(&filterMaxOccurrences, "max-occurrences", bigram.DefaultMaxOccurrences, "rare pairs that mark a word as hashed (occurrence)")
	cmd.Flags().IntVar(&filterMinCount, "min-count", bigram.DefaultMinCount, "raw count below which a pair is rare when --min is unset (occurrence)")
	cmd.Flags().BoolVar(&filterAutoMin, "auto-min", false, "derive the threshold from the corpus size")
	cmd.Flags().IntVar(&filterCacheSize, "cache-size", bigram.DefaultCacheSize, "number of memoized word scores")
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print the weighted score of each stdin line",
		Args:  cobra.NoArgs,
		RunE:  runScoreCmd,
	}
	addPolicyFlags(cmd)
	cmd.Flags().BoolVar(&scoreJSON, "json", false, "emit JSON lines with weighted and joint scores and the verdict")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, _ []string) error {
	m, _, err := resolveModel(cmd.Context())
	if err != nil {
		return err
	}
	scorer, err := bigram.NewCachedScorer(m, filterCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create score cache: %w", err)
	}
	policy, _, err := buildPolicy(cmd, m)
	if err != nil {
		return err
	}
	opts := filter.ScoreOptions{JSON: scoreJSON}
	if scoreJSON {
		opts.Joint = m.JointSliceProbability
		opts.Classify = classifier(scorer, policy)
	}
	lines, err := filter.Score(cmd.InOrStdin(), cmd.OutOrStdout(), scorer, opts)
	if err != nil {
		return err
	}
	log().Debug("scored lines", "lines", lines, "cached", scorer.Len())
	return nil
}

func newSplitCmd(bucket model.Bucket) *cobra.Command {
	short := "Print cleartext words from stdin"
	if bucket == model.Hashed {
		short = "Print hashed/encoded words from stdin"
	}
	cmd := &cobra.Command{
		Use:   bucket.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSplitCmd(cmd, bucket)
		},
	}
	addPolicyFlags(cmd)
	cmd.Flags().BoolVarP(&filterUnique, "unique", "u", false, "only print unique results")
	cmd.Flags().BoolVar(&filterRecord, "record", false, "store run statistics for 'history'")
	return cmd
}

func runSplitCmd(cmd *cobra.Command, bucket model.Bucket) error {
	ctx := cmd.Context()
	m, src, err := resolveModel(ctx)
	if err != nil {
		return err
	}
	policy, _, err := buildPolicy(cmd, m)
	if err != nil {
		return err
	}
	scorer, err := bigram.NewCachedScorer(m, filterCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create score cache: %w", err)
	}
	run, err := filter.Split(cmd.InOrStdin(), cmd.OutOrStdout(), classifier(scorer, policy), filter.SplitOptions{
		Bucket: bucket,
		Unique: filterUnique,
		Source: src.Label(),
		Policy: policy.String(),
	})
	if err != nil {
		return err
	}
	if !filterRecord {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	if _, err := st.InsertRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Score words interactively",
		Args:  cobra.NoArgs,
		RunE:  runExploreCmd,
	}
	addPolicyFlags(cmd)
	return cmd
}

func runExploreCmd(cmd *cobra.Command, _ []string) error {
	m, src, err := resolveModel(cmd.Context())
	if err != nil {
		return err
	}
	policy, threshold, err := buildPolicy(cmd, m)
	if err != nil {
		return err
	}
	scorer, err := bigram.NewCachedScorer(m, filterCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create score cache: %w", err)
	}
	ui := tui.NewModel(scorer, tui.Options{
		Source:        src.Label(),
		Policy:        policy,
		PairThreshold: threshold,
	})
	program := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildPolicy turns the filter flags into a Policy and the probability
// threshold it compares against.
func buildPolicy(cmd *cobra.Command, m *bigram.Model) (bigram.Policy, float64, error) {
	kind, err := bigram.ParsePolicyKind(filterPolicy)
	if err != nil {
		return nil, 0, err
	}
	if filterMaxOccurrences < 0 {
		return nil, 0, errors.New("--max-occurrences must be >= 0")
	}
	if filterMinCount < 0 {
		return nil, 0, errors.New("--min-count must be >= 0")
	}
	minSet := cmd.Flags().Changed("min") || fileCfg.Filter.MinProbability != nil

	threshold := filterMin
	switch {
	case filterAutoMin:
		threshold, err = bigram.DerivedMinProbability(m)
		if err != nil {
			return nil, 0, fmt.Errorf("--auto-min needs a model built from a corpus: %w", err)
		}
	case kind == bigram.PolicyOccurrence && !minSet:
		threshold, err = bigram.CountThreshold(m, uint64(filterMinCount))
		if err != nil {
			return nil, 0, fmt.Errorf("occurrence policy needs --min for a model without raw counts: %w", err)
		}
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, 0, fmt.Errorf("--min must be >= 0")
	}

	var policy bigram.Policy
	if kind == bigram.PolicyOccurrence {
		policy = bigram.OccurrencePolicy{MinProbability: threshold, MaxOccurrences: filterMaxOccurrences}
	} else {
		policy = bigram.WeightedPolicy{MinProbability: threshold}
	}
	log().Debug("policy selected", "policy", policy.String())
	return policy, threshold, nil
}

// classifier routes weighted decisions through the score cache.
func classifier(scorer *bigram.CachedScorer, policy bigram.Policy) func(string) bool {
	if p, ok := policy.(bigram.WeightedPolicy); ok {
		return func(word string) bool {
			return scorer.IsWordCleartext(word, p.MinProbability)
		}
	}
	m := scorer.Model()
	return func(word string) bool {
		return policy.Cleartext(m, word)
	}
}
