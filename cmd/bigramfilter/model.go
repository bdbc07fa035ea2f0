package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/generator"
	"github.com/verte-zerg/bigramfilter/internal/stats"
	"github.com/verte-zerg/bigramfilter/internal/wordlist"
)

const (
	defaultTopN          = 20
	defaultHistoryLast   = 50
	defaultHistoryWindow = 5
	defaultSamples       = 1000
	sampleMinLen         = 16
	sampleMaxLen         = 64
)

var (
	matrixPretty bool
	matrixCounts bool
	matrixOut    string

	topN    int
	topWeak bool

	modelsDelete string

	historyLast   int
	historyWindow int

	calibrateGood    string
	calibrateBad     string
	calibrateSamples int
)

func newMatrixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the transition matrix",
		Long: `Print the transition matrix in its text form, which --load reads back.
With --pretty the matrix is rendered as a table instead.`,
		Args: cobra.NoArgs,
		RunE: runMatrixCmd,
	}
	cmd.Flags().BoolVar(&matrixPretty, "pretty", false, "render a bordered table")
	cmd.Flags().BoolVar(&matrixCounts, "counts", false, "show raw counts in the table when available")
	cmd.Flags().StringVarP(&matrixOut, "out", "o", "", "write the matrix text to a file instead of stdout")
	return cmd
}

func runMatrixCmd(cmd *cobra.Command, _ []string) error {
	m, _, err := resolveModel(cmd.Context())
	if err != nil {
		return err
	}
	if matrixOut != "" {
		if matrixPretty {
			return errors.New("--pretty cannot be combined with --out")
		}
		if err := writeMatrixFile(matrixOut, m); err != nil {
			return err
		}
		logErrf("Wrote %s\n", matrixOut)
		return nil
	}
	out := cmd.OutOrStdout()
	if matrixPretty {
		return stats.RenderMatrixTable(out, m, stats.MatrixOptions{
			Counts: matrixCounts,
			Color:  stats.ShouldUseColor(out),
		})
	}
	w := bufio.NewWriter(out)
	if err := stats.WriteMatrix(w, m); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write matrix: %w", err)
	}
	return nil
}

func writeMatrixFile(path string, m *bigram.Model) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create matrix dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "matrix-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp matrix: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := stats.WriteMatrix(writer, m); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush matrix: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close matrix: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write matrix: %w", err)
	}
	return nil
}

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most frequent transitions",
		Args:  cobra.NoArgs,
		RunE:  runTopCmd,
	}
	cmd.Flags().IntVarP(&topN, "limit", "n", defaultTopN, "number of transitions")
	cmd.Flags().BoolVar(&topWeak, "weak", false, "list the least frequent transitions that were seen")
	return cmd
}

func runTopCmd(cmd *cobra.Command, _ []string) error {
	if topN <= 0 {
		return errors.New("--limit must be > 0")
	}
	m, _, err := resolveModel(cmd.Context())
	if err != nil {
		return err
	}
	if topWeak {
		return stats.RenderTopTable(cmd.OutOrStdout(), "Least frequent transitions", stats.WeakTransitions(m, topN), m.HasCounts())
	}
	return stats.RenderTopTable(cmd.OutOrStdout(), "Most frequent transitions", stats.TopTransitions(m, topN), m.HasCounts())
}

func newTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train NAME",
		Short: "Build a matrix from --corpus and store it under NAME",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrainCmd,
	}
}

func runTrainCmd(cmd *cobra.Command, args []string) error {
	name := args[0]
	if cmd.Flags().Changed("model") {
		return errors.New("train reads --corpus; --model cannot be used here")
	}
	rootModelName = ""
	ctx := cmd.Context()
	m, src, err := resolveModel(ctx)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	if _, err := st.SaveModel(ctx, name, src.Label(), m); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	logErrf("Saved model %s (%d transitions)\n", name, m.Total())
	return nil
}

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE:  runModelsCmd,
	}
	cmd.Flags().StringVar(&modelsDelete, "delete", "", "delete the named model")
	return cmd
}

func runModelsCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	if modelsDelete != "" {
		if err := st.DeleteModel(ctx, modelsDelete); err != nil {
			return fmt.Errorf("failed to delete model: %w", err)
		}
		logErrf("Deleted model %s\n", modelsDelete)
		return nil
	}
	models, err := st.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	return stats.RenderModels(cmd.OutOrStdout(), models)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded filter runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 for all)")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the sparkline")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	report, err := stats.BuildReport(ctx, st, historyLast)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	width := stats.TerminalWidth() - len("Cleartext ratio: ")
	return stats.RenderReport(cmd.OutOrStdout(), report, historyWindow, width)
}

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Suggest a --min threshold from known cleartext and hashed samples",
		Long: `Score a list of known cleartext words and a list of known hashed tokens and
print the weighted threshold halfway between them. Without --bad, random hex,
base64 and alphanumeric tokens are used as hashed samples.`,
		Args: cobra.NoArgs,
		RunE: runCalibrateCmd,
	}
	cmd.Flags().StringVar(&calibrateGood, "good", "", "file with one cleartext word per line")
	cmd.Flags().StringVar(&calibrateBad, "bad", "", "file with one hashed token per line")
	cmd.Flags().IntVar(&calibrateSamples, "samples", defaultSamples, "generated hashed tokens when --bad is unset")
	_ = cmd.MarkFlagRequired("good")
	return cmd
}

func runCalibrateCmd(cmd *cobra.Command, _ []string) error {
	m, _, err := resolveModel(cmd.Context())
	if err != nil {
		return err
	}
	good, err := wordlist.LoadWords(calibrateGood)
	if err != nil {
		return fmt.Errorf("failed to load --good: %w", err)
	}
	var bad []string
	if calibrateBad != "" {
		bad, err = wordlist.LoadWords(calibrateBad)
		if err != nil {
			return fmt.Errorf("failed to load --bad: %w", err)
		}
	} else {
		if calibrateSamples <= 0 {
			return errors.New("--samples must be > 0")
		}
		bad = generator.New().Tokens(calibrateSamples, sampleMinLen, sampleMaxLen)
	}
	threshold, err := bigram.Calibrate(m, good, bad)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(threshold, 'g', -1, 64)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logErrf("Use: bigramfilter clear --min %g\n", threshold)
	return nil
}
