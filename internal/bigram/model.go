// Package bigram learns character transition statistics from a corpus and
// scores strings for how natural they look against them.
//
// A Model holds a dense matrix over Charset x Charset. Each cell is the
// number of times the successor immediately followed the predecessor,
// divided by the total number of transitions in the whole corpus. The
// normalizer is global, not per row, so cells approximate the joint bigram
// probability and the whole matrix sums to 1.
package bigram

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/bigramfilter/internal/charset"
)

var (
	// ErrNoTransitions is returned when a model has no counted transitions.
	ErrNoTransitions = errors.New("bigram: corpus has no transitions")
	// ErrNoCounts is returned by operations that need raw counts on a model
	// that was loaded from probabilities.
	ErrNoCounts = errors.New("bigram: model has no raw counts")
)

// Model is an immutable transition matrix. It is safe for concurrent reads.
type Model struct {
	cs    *charset.Charset
	n     int
	probs []float64
	// counts is nil for models loaded from probabilities.
	counts []uint64
	total  uint64
}

// Transition is a single matrix cell.
type Transition struct {
	From  rune
	To    rune
	Prob  float64
	Count uint64
}

// FromCounts builds a model from raw counts laid out row by row.
func FromCounts(cs *charset.Charset, counts []uint64) (*Model, error) {
	n := cs.Len()
	if len(counts) != n*n {
		return nil, fmt.Errorf("bigram: expected %d counts, got %d", n*n, len(counts))
	}
	owned := make([]uint64, len(counts))
	copy(owned, counts)
	return compile(cs, owned), nil
}

// FromProbabilities builds a model from normalized cells laid out row by row.
func FromProbabilities(cs *charset.Charset, probs []float64) (*Model, error) {
	n := cs.Len()
	if len(probs) != n*n {
		return nil, fmt.Errorf("bigram: expected %d probabilities, got %d", n*n, len(probs))
	}
	owned := make([]float64, len(probs))
	copy(owned, probs)
	return &Model{cs: cs, n: n, probs: owned}, nil
}

func compile(cs *charset.Charset, counts []uint64) *Model {
	m := &Model{
		cs:     cs,
		n:      cs.Len(),
		probs:  make([]float64, len(counts)),
		counts: counts,
	}
	for _, c := range counts {
		m.total += c
	}
	if m.total == 0 {
		return m
	}
	total := float64(m.total)
	for i, c := range counts {
		m.probs[i] = float64(c) / total
	}
	return m
}

// Charset returns the alphabet of the model.
func (m *Model) Charset() *charset.Charset {
	return m.cs
}

// Total returns the number of transitions counted while building the model.
// It is zero for models loaded from probabilities.
func (m *Model) Total() uint64 {
	return m.total
}

// HasCounts reports whether the model carries raw counts.
func (m *Model) HasCounts() bool {
	return m.counts != nil
}

// Empty reports whether every cell is zero.
func (m *Model) Empty() bool {
	if m.counts != nil {
		return m.total == 0
	}
	for _, p := range m.probs {
		if p != 0 {
			return false
		}
	}
	return true
}

// Prob returns the probability of b following a. Case is folded first.
// The boolean is false when either rune is outside the charset.
func (m *Model) Prob(a, b rune) (float64, bool) {
	i, j := m.cs.Index(charset.Fold(a)), m.cs.Index(charset.Fold(b))
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.probs[i*m.n+j], true
}

// Count returns the raw count of b following a.
func (m *Model) Count(a, b rune) (uint64, error) {
	if m.counts == nil {
		return 0, ErrNoCounts
	}
	i, j := m.cs.Index(charset.Fold(a)), m.cs.Index(charset.Fold(b))
	if i < 0 || j < 0 {
		return 0, fmt.Errorf("bigram: %q%q is outside the charset", a, b)
	}
	return m.counts[i*m.n+j], nil
}

// Cell returns the probability at row i, column j.
func (m *Model) Cell(i, j int) float64 {
	return m.probs[i*m.n+j]
}

// Probabilities returns a copy of the matrix laid out row by row.
func (m *Model) Probabilities() []float64 {
	out := make([]float64, len(m.probs))
	copy(out, m.probs)
	return out
}

// Counts returns a copy of the raw counts, or nil.
func (m *Model) Counts() []uint64 {
	if m.counts == nil {
		return nil
	}
	out := make([]uint64, len(m.counts))
	copy(out, m.counts)
	return out
}

// Transitions returns every cell in charset order.
func (m *Model) Transitions() []Transition {
	out := make([]Transition, 0, len(m.probs))
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			t := Transition{
				From: m.cs.At(i),
				To:   m.cs.At(j),
				Prob: m.probs[i*m.n+j],
			}
			if m.counts != nil {
				t.Count = m.counts[i*m.n+j]
			}
			out = append(out, t)
		}
	}
	return out
}

// MaxProb returns the largest cell.
func (m *Model) MaxProb() float64 {
	var best float64
	for _, p := range m.probs {
		if p > best {
			best = p
		}
	}
	return best
}
