package bigram

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/verte-zerg/bigramfilter/internal/charset"
)

// Trainer accumulates raw transition counts.
type Trainer struct {
	cs     *charset.Charset
	n      int
	counts []uint64
}

// NewTrainer returns a Trainer with every cell set to zero.
func NewTrainer(cs *charset.Charset) *Trainer {
	return &Trainer{
		cs:     cs,
		n:      cs.Len(),
		counts: make([]uint64, cs.Len()*cs.Len()),
	}
}

// Add counts the transitions in r. The start of every reader is a sequence
// break, so no transition spans two calls.
func (t *Trainer) Add(r io.Reader) error {
	buf := bufio.NewReader(r)
	last := -1
	for {
		ch, _, err := buf.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		last = t.step(last, ch)
	}
}

// AddString counts the transitions in s.
func (t *Trainer) AddString(s string) {
	last := -1
	for _, ch := range s {
		last = t.step(last, ch)
	}
}

func (t *Trainer) step(last int, ch rune) int {
	idx := t.cs.Index(charset.Fold(ch))
	if idx < 0 {
		return -1
	}
	if last >= 0 {
		t.counts[last*t.n+idx]++
	}
	return idx
}

// Total returns the number of transitions counted so far.
func (t *Trainer) Total() uint64 {
	var total uint64
	for _, c := range t.counts {
		total += c
	}
	return total
}

// Compile normalizes the counts by the total number of transitions.
// A trainer with no transitions yields an all-zero model.
func (t *Trainer) Compile() *Model {
	counts := make([]uint64, len(t.counts))
	copy(counts, t.counts)
	return compile(t.cs, counts)
}

// Analyze builds a model from a single corpus.
func Analyze(cs *charset.Charset, r io.Reader) (*Model, error) {
	tr := NewTrainer(cs)
	if err := tr.Add(r); err != nil {
		return nil, err
	}
	return tr.Compile(), nil
}

// AnalyzeString builds a model from corpus text held in memory.
func AnalyzeString(cs *charset.Charset, corpus string) *Model {
	m, _ := Analyze(cs, strings.NewReader(corpus))
	return m
}
