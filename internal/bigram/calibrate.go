package bigram

import (
	"errors"
	"fmt"
	"math"
)

// Calibrate suggests a weighted threshold that separates good from bad:
// the midpoint between the lowest good score and the highest bad score.
// The threshold is still returned alongside an error when the sets overlap.
func Calibrate(m *Model, good, bad []string) (float64, error) {
	if len(good) == 0 || len(bad) == 0 {
		return 0, errors.New("bigram: calibration needs good and bad samples")
	}
	minGood := math.MaxFloat64
	for _, s := range good {
		if v := m.WeightedSliceProbability(s); v < minGood {
			minGood = v
		}
	}
	var maxBad float64
	for _, s := range bad {
		if v := m.WeightedSliceProbability(s); v > maxBad {
			maxBad = v
		}
	}
	thresh := (minGood + maxBad) / 2
	if minGood <= maxBad {
		return thresh, fmt.Errorf("bigram: calibration failed; lowest good score %g is not above highest bad score %g", minGood, maxBad)
	}
	return thresh, nil
}
