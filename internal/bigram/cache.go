package bigram

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of weighted scores kept by a CachedScorer.
const DefaultCacheSize = 4096

// CachedScorer memoizes weighted scores. Wordlists repeat entries a lot.
// It is safe for concurrent use.
type CachedScorer struct {
	model *Model
	cache *lru.Cache[string, float64]
}

// NewCachedScorer wraps m with an LRU of the given size.
func NewCachedScorer(m *Model, size int) (*CachedScorer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachedScorer{model: m, cache: cache}, nil
}

// Model returns the wrapped model.
func (s *CachedScorer) Model() *Model {
	return s.model
}

// WeightedSliceProbability returns the memoized weighted score of word.
func (s *CachedScorer) WeightedSliceProbability(word string) float64 {
	if v, ok := s.cache.Get(word); ok {
		return v
	}
	v := s.model.WeightedSliceProbability(word)
	s.cache.Add(word, v)
	return v
}

// Len returns the number of cached scores.
func (s *CachedScorer) Len() int {
	return s.cache.Len()
}

// IsWordCleartext reports whether the memoized weighted score of word
// strictly exceeds threshold.
func (s *CachedScorer) IsWordCleartext(word string, threshold float64) bool {
	return s.WeightedSliceProbability(word) > threshold
}
