package bigram

import (
	"fmt"
	"strings"
)

// Policy decides whether a word looks like cleartext under a model.
type Policy interface {
	Cleartext(m *Model, word string) bool
	String() string
}

// WeightedPolicy accepts words whose weighted score strictly exceeds
// MinProbability.
type WeightedPolicy struct {
	MinProbability float64
}

// Cleartext implements Policy.
func (p WeightedPolicy) Cleartext(m *Model, word string) bool {
	return m.IsWordCleartext(word, p.MinProbability)
}

func (p WeightedPolicy) String() string {
	return fmt.Sprintf("weighted(min=%g)", p.MinProbability)
}

// OccurrencePolicy counts transitions whose cell is below MinProbability and
// accepts words with strictly fewer than MaxOccurrences of them.
type OccurrencePolicy struct {
	MinProbability float64
	MaxOccurrences int
}

// DefaultMaxOccurrences is the number of rare transitions that marks a word
// as encoded.
const DefaultMaxOccurrences = 1

// DefaultMinCount is the raw count below which a transition is rare.
const DefaultMinCount = 10

// Cleartext implements Policy.
func (p OccurrencePolicy) Cleartext(m *Model, word string) bool {
	return m.RareTransitions(word, p.MinProbability) < p.MaxOccurrences
}

func (p OccurrencePolicy) String() string {
	return fmt.Sprintf("occurrence(min=%g, max=%d)", p.MinProbability, p.MaxOccurrences)
}

// DerivedMinProbability derives a rarity threshold from the corpus size:
// a transition is rare when it was seen fewer than total/10000 times.
func DerivedMinProbability(m *Model) (float64, error) {
	if !m.HasCounts() {
		return 0, ErrNoCounts
	}
	if m.total == 0 {
		return 0, ErrNoTransitions
	}
	return float64(m.total/10000) / float64(m.total), nil
}

// CountThreshold expresses a raw count as a cell probability of m.
func CountThreshold(m *Model, count uint64) (float64, error) {
	if !m.HasCounts() {
		return 0, ErrNoCounts
	}
	if m.total == 0 {
		return 0, ErrNoTransitions
	}
	return float64(count) / float64(m.total), nil
}

// PolicyKind names a Policy implementation.
type PolicyKind string

// Known policy kinds.
const (
	PolicyWeighted   PolicyKind = "weighted"
	PolicyOccurrence PolicyKind = "occurrence"
)

// ParsePolicyKind validates a policy name.
func ParsePolicyKind(s string) (PolicyKind, error) {
	switch PolicyKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyWeighted:
		return PolicyWeighted, nil
	case PolicyOccurrence:
		return PolicyOccurrence, nil
	}
	return "", fmt.Errorf("unknown policy %q (available: weighted, occurrence)", s)
}
