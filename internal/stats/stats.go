package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/bigramfilter/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RunMetrics computes the cleartext ratio and throughput of a run.
func RunMetrics(lines, cleartext int, durationMs int64) (ratio, linesPerSec float64) {
	if lines > 0 {
		ratio = float64(cleartext) / float64(lines)
	}
	if durationMs > 0 {
		linesPerSec = float64(lines) / (float64(durationMs) / 1000.0)
	}
	return ratio, linesPerSec
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints totals across runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var lines, cleartext, hashed, duplicates int
	var durationMs int64
	for _, r := range runs {
		lines += r.Lines
		cleartext += r.Cleartext
		hashed += r.Hashed
		duplicates += r.Duplicates
		durationMs += r.DurationMs
	}
	ratio, rate := RunMetrics(lines, cleartext, durationMs)
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Runs: %d\n", len(runs)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Lines: %d\n", lines); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Cleartext: %d (%.2f%%)\n", cleartext, ratio*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Hashed: %d\n", hashed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Duplicates skipped: %d\n", duplicates); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Lines/sec: %.0f\n", rate); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderHistory prints one row per run followed by a sparkline of the
// cleartext ratio smoothed over window runs. width limits the sparkline to
// the most recent runs; zero disables the limit.
func RenderHistory(w io.Writer, runs []model.RunAggregate, window, width int) error {
	if len(runs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Runs"); err != nil {
		return err
	}
	headers := []string{"ID", "Ended", "Source", "Bucket", "Policy", "Lines", "Clear %", "Dupes"}
	rows := make([][]string, 0, len(runs))
	ratios := make([]float64, 0, len(runs))
	for _, r := range runs {
		ratio, _ := RunMetrics(r.Lines, r.Cleartext, r.DurationMs)
		ratios = append(ratios, ratio)
		rows = append(rows, []string{
			strconv.FormatInt(r.RunID, 10),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			r.Bucket,
			r.Policy,
			strconv.Itoa(r.Lines),
			fmt.Sprintf("%.2f", ratio*100),
			strconv.Itoa(r.Duplicates),
		})
	}
	rightAlign := map[int]bool{0: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	ratios = MovingAverage(ratios, window)
	if width > 0 && len(ratios) > width {
		ratios = ratios[len(ratios)-width:]
	}
	if _, err := fmt.Fprintf(w, "\nCleartext ratio: %s\n", Sparkline(ratios)); err != nil {
		return err
	}
	return nil
}
