// Package filter streams word lists through a bigram model.
package filter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/verte-zerg/bigramfilter/internal/model"
	"github.com/verte-zerg/bigramfilter/internal/wordlist"
)

func log() *slog.Logger {
	return slog.With("component", "filter")
}

// Scorer returns the weighted score of a word.
type Scorer interface {
	WeightedSliceProbability(word string) float64
}

// ScoreOptions controls Score output.
type ScoreOptions struct {
	// JSON emits one object per line instead of "<score>\t<line>".
	JSON bool
	// Joint, when set, adds the joint score to JSON records.
	Joint func(string) float64
	// Classify, when set, adds the verdict to JSON records.
	Classify func(string) bool
}

// Record is a JSON score line.
type Record struct {
	Word      string   `json:"word"`
	Weighted  float64  `json:"weighted"`
	Joint     *float64 `json:"joint,omitempty"`
	Cleartext *bool    `json:"cleartext,omitempty"`
}

// Score writes the weighted score of every input line and returns the
// number of lines scored.
func Score(r io.Reader, w io.Writer, scorer Scorer, opts ScoreOptions) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	lines := 0
	err := eachLine(r, func(line string) error {
		lines++
		weighted := scorer.WeightedSliceProbability(line)
		if !opts.JSON {
			_, err := bw.WriteString(strconv.FormatFloat(weighted, 'f', -1, 64) + "\t" + line + "\n")
			return err
		}
		rec := Record{Word: line, Weighted: weighted}
		if opts.Joint != nil {
			joint := opts.Joint(line)
			rec.Joint = &joint
		}
		if opts.Classify != nil {
			isClear := opts.Classify(line)
			rec.Cleartext = &isClear
		}
		return enc.Encode(rec)
	})
	if err != nil {
		return lines, err
	}
	if err := bw.Flush(); err != nil {
		return lines, fmt.Errorf("failed to write scores: %w", err)
	}
	return lines, nil
}

// SplitOptions controls Split.
type SplitOptions struct {
	Bucket model.Bucket
	Unique bool
	Source string
	Policy string
}

// Split writes the lines that fall into the selected bucket. With Unique
// set, a word already written is skipped.
func Split(r io.Reader, w io.Writer, classify func(string) bool, opts SplitOptions) (model.RunStats, error) {
	stats := model.RunStats{
		StartedAt: time.Now(),
		Source:    opts.Source,
		Bucket:    opts.Bucket,
		Policy:    opts.Policy,
	}
	keep := wordlist.KeepAll()
	if opts.Unique {
		keep = wordlist.Unique()
	}
	bw := bufio.NewWriter(w)
	err := eachLine(r, func(line string) error {
		stats.Lines++
		isClear := classify(line)
		if isClear {
			stats.Cleartext++
		} else {
			stats.Hashed++
		}
		if isClear != (opts.Bucket == model.Cleartext) {
			return nil
		}
		if !keep(line) {
			stats.Duplicates++
			return nil
		}
		_, err := bw.WriteString(line + "\n")
		return err
	})
	stats.EndedAt = time.Now()
	stats.DurationMs = stats.EndedAt.Sub(stats.StartedAt).Milliseconds()
	if err != nil {
		return stats, err
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write words: %w", err)
	}
	log().Debug("split finished",
		"bucket", opts.Bucket.String(),
		"lines", stats.Lines,
		"cleartext", stats.Cleartext,
		"hashed", stats.Hashed,
		"duplicates", stats.Duplicates)
	return stats, nil
}

func eachLine(r io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), wordlist.MaxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
