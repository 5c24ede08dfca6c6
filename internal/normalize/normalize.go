// Package normalize turns skewed, heavy-tailed intensity signals into bounded
// scores. Each strategy is split into a Fit step over a whole batch, which
// yields an immutable profile, and a Normalize step applied per value.
package normalize

import "math"

// degenerateSpan is the smallest input span treated as a real range.
const degenerateSpan = 1e-6

// Normalizer maps one raw value into a bounded score using statistics fitted
// on a batch.
type Normalizer interface {
	Normalize(v float64) float64
}

// Clamp01 bounds v to [0, 1]. Non-finite input maps to 0.
func Clamp01(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
