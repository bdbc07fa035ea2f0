package bigram

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/bigramfilter/internal/charset"
)

func prob(t *testing.T, m *Model, pair string) float64 {
	t.Helper()
	runes := []rune(pair)
	require.Len(t, runes, 2)
	p, ok := m.Prob(runes[0], runes[1])
	require.True(t, ok, "pair %q outside charset", pair)
	return p
}

func TestAnalyzeSmallCorpus(t *testing.T) {
	m := AnalyzeString(charset.MustParse("ab"), "aabb")

	assert.Equal(t, uint64(3), m.Total())
	assert.InDelta(t, 1.0/3, prob(t, m, "aa"), 1e-12)
	assert.InDelta(t, 1.0/3, prob(t, m, "ab"), 1e-12)
	assert.Zero(t, prob(t, m, "ba"))
	assert.InDelta(t, 1.0/3, prob(t, m, "bb"), 1e-12)

	c, err := m.Count('a', 'b')
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c)
}

func TestAnalyzeFoldsCase(t *testing.T) {
	cs := charset.MustParse("ab")
	upper := AnalyzeString(cs, "AaBb")
	lower := AnalyzeString(cs, "aabb")
	assert.Equal(t, lower.Probabilities(), upper.Probabilities())
	assert.Equal(t, lower.Total(), upper.Total())
}

func TestAnalyzeBreaksSequenceOnExcludedRunes(t *testing.T) {
	m := AnalyzeString(charset.MustParse("ab"), "ab ba!ab\nb")

	// ab, ba, ab; the breaks drop b-b, a-a and b-b.
	assert.Equal(t, uint64(3), m.Total())
	assert.InDelta(t, 2.0/3, prob(t, m, "ab"), 1e-12)
	assert.InDelta(t, 1.0/3, prob(t, m, "ba"), 1e-12)
	assert.Zero(t, prob(t, m, "bb"))
	assert.Zero(t, prob(t, m, "aa"))
}

func TestAnalyzeMatrixSumsToOne(t *testing.T) {
	corpus := "The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs, 1234-5678_x+y."
	m := AnalyzeString(charset.MustParse(charset.Default), corpus)
	require.False(t, m.Empty())

	var sum float64
	for _, p := range m.Probabilities() {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestAnalyzeDegenerateCorpus(t *testing.T) {
	cs := charset.MustParse("ab")
	for _, corpus := range []string{"", "a", "a b a", "!!!"} {
		m := AnalyzeString(cs, corpus)
		assert.True(t, m.Empty(), "corpus %q", corpus)
		assert.Zero(t, m.Total())
		for _, p := range m.Probabilities() {
			assert.Zero(t, p)
		}
		assert.Zero(t, m.WeightedSliceProbability("ab"))
	}
}

func TestTrainerAddTreatsReadersAsBoundaries(t *testing.T) {
	tr := NewTrainer(charset.MustParse("ab"))
	require.NoError(t, tr.Add(strings.NewReader("a")))
	require.NoError(t, tr.Add(strings.NewReader("b")))
	assert.Zero(t, tr.Total())

	tr.AddString("ab")
	m := tr.Compile()
	assert.Equal(t, uint64(1), m.Total())
	assert.Equal(t, 1.0, prob(t, m, "ab"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestAnalyzePropagatesReadErrors(t *testing.T) {
	_, err := Analyze(charset.MustParse("ab"), failingReader{})
	require.Error(t, err)
}

func TestFromCountsMatchesTrainer(t *testing.T) {
	cs := charset.MustParse("ab")
	trained := AnalyzeString(cs, "aabb")
	rebuilt, err := FromCounts(cs, trained.Counts())
	require.NoError(t, err)
	assert.Equal(t, trained.Probabilities(), rebuilt.Probabilities())

	_, err = FromCounts(cs, []uint64{1, 2})
	require.Error(t, err)
}

func TestFromProbabilitiesHasNoCounts(t *testing.T) {
	m, err := FromProbabilities(charset.MustParse("ab"), []float64{0.5, 0.5, 0, 0})
	require.NoError(t, err)
	assert.False(t, m.HasCounts())
	assert.False(t, m.Empty())
	_, err = m.Count('a', 'b')
	assert.ErrorIs(t, err, ErrNoCounts)
	assert.Equal(t, 0.5, m.MaxProb())
}

func TestTransitionsCoverEveryCell(t *testing.T) {
	m := AnalyzeString(charset.MustParse("abc"), "abcabc")
	cells := m.Transitions()
	require.Len(t, cells, 9)
	assert.Equal(t, 'a', cells[1].From)
	assert.Equal(t, 'b', cells[1].To)
	assert.Equal(t, uint64(2), cells[1].Count)
}
