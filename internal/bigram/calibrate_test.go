package bigram

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrate(t *testing.T) {
	m := sampleModel(t)
	good := []string{"wisdom", "season", "winter", "hello"}
	bad := []string{"5f4dcc3b5aa765d61d8327deb882cf99", "qzxjkvq", "x9z8q7"}

	thresh, err := Calibrate(m, good, bad)
	require.NoError(t, err)
	for _, w := range good {
		assert.True(t, m.IsWordCleartext(w, thresh), w)
	}
	for _, w := range bad {
		assert.False(t, m.IsWordCleartext(w, thresh), w)
	}
}

func TestCalibrateFailures(t *testing.T) {
	m := sampleModel(t)
	_, err := Calibrate(m, nil, []string{"x"})
	assert.Error(t, err)

	_, err = Calibrate(m, []string{"qzxjkvq"}, []string{"the"})
	assert.Error(t, err)
}

func TestCachedScorer(t *testing.T) {
	m := sampleModel(t)
	s, err := NewCachedScorer(m, 2)
	require.NoError(t, err)
	assert.Same(t, m, s.Model())

	assert.Equal(t, m.WeightedSliceProbability("wisdom"), s.WeightedSliceProbability("wisdom"))
	assert.Equal(t, m.WeightedSliceProbability("wisdom"), s.WeightedSliceProbability("wisdom"))
	s.WeightedSliceProbability("season")
	s.WeightedSliceProbability("winter")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.IsWordCleartext("season", DefaultMinProbability))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, w := range []string{"the", "hope", "qzxjkvq"} {
				assert.Equal(t, m.WeightedSliceProbability(w), s.WeightedSliceProbability(w))
			}
		}()
	}
	wg.Wait()
}
