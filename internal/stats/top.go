package stats

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
)

// TopTransitions returns the n most probable transitions. Ties keep
// charset order.
func TopTransitions(m *bigram.Model, n int) []bigram.Transition {
	if n <= 0 {
		return nil
	}
	items := m.Transitions()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Prob > items[j].Prob
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// WeakTransitions returns the n least probable transitions that were seen
// at least once. These are the pairs that push words towards the hashed
// bucket under the occurrence policy.
func WeakTransitions(m *bigram.Model, n int) []bigram.Transition {
	if n <= 0 {
		return nil
	}
	all := m.Transitions()
	items := all[:0]
	for _, t := range all {
		if t.Prob > 0 {
			items = append(items, t)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Prob < items[j].Prob
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// RenderTopTable prints transitions with their probability, and their raw
// count when withCounts is set.
func RenderTopTable(w io.Writer, title string, transitions []bigram.Transition, withCounts bool) error {
	if len(transitions) == 0 {
		_, err := fmt.Fprintln(w, "No transitions found.")
		return err
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	headers := []string{"Pair", "Probability"}
	if withCounts {
		headers = append(headers, "Count")
	}
	rows := make([][]string, 0, len(transitions))
	for _, t := range transitions {
		row := []string{
			string([]rune{t.From, t.To}),
			strconv.FormatFloat(t.Prob, 'f', 6, 64),
		}
		if withCounts {
			row = append(row, strconv.FormatUint(t.Count, 10))
		}
		rows = append(rows, row)
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
