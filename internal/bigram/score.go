package bigram

import "github.com/verte-zerg/bigramfilter/internal/charset"

// DefaultMinProbability is the weighted score a word must exceed to count
// as cleartext when no threshold is configured.
const DefaultMinProbability = 0.0001

// walk calls fn with the cell of every adjacent member pair in s and
// returns the number of runes in s. Runes outside the charset break the
// sequence.
func (m *Model) walk(s string, fn func(p float64)) int {
	chars := 0
	last := -1
	for _, ch := range s {
		chars++
		idx := m.cs.Index(charset.Fold(ch))
		if idx < 0 {
			last = -1
			continue
		}
		if last >= 0 {
			fn(m.probs[last*m.n+idx])
		}
		last = idx
	}
	return chars
}

// WeightedSliceProbability sums the cells of every adjacent pair in s and
// divides by the number of runes in s, including runes outside the charset.
// A single rune scores 1; an empty string scores 0.
func (m *Model) WeightedSliceProbability(s string) float64 {
	var sum float64
	chars := m.walk(s, func(p float64) { sum += p })
	switch chars {
	case 0:
		return 0
	case 1:
		return 1
	}
	return sum / float64(chars)
}

// JointSliceProbability multiplies the cells of every adjacent pair in s.
// It decays quickly with length. Strings without pairs score 1.
func (m *Model) JointSliceProbability(s string) float64 {
	prob := 1.0
	m.walk(s, func(p float64) { prob *= p })
	return prob
}

// IsWordCleartext reports whether the weighted score of word strictly
// exceeds threshold.
func (m *Model) IsWordCleartext(word string, threshold float64) bool {
	return m.WeightedSliceProbability(word) > threshold
}

// RareTransitions counts adjacent pairs in s whose cell is below threshold.
func (m *Model) RareTransitions(s string, threshold float64) int {
	occurrences := 0
	m.walk(s, func(p float64) {
		if p < threshold {
			occurrences++
		}
	})
	return occurrences
}
