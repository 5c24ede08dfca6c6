package normalize

import "math"

// degenerateLogScore is returned for every finite value when the fitted batch
// has no spread.
const degenerateLogScore = 0.5

// LogProfile is a fitted log-compressed min/max summary. It suits demand-like,
// strongly right-skewed signals.
type LogProfile struct {
	Min   float64
	Max   float64
	empty bool
}

// FitLog fits a LogProfile over log10(v+1) of the batch. Negative values are
// treated as 0 and non-finite values are ignored.
func FitLog(values []float64) LogProfile {
	p := LogProfile{Min: math.Inf(1), Max: math.Inf(-1)}
	n := 0
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		l := compress(v)
		p.Min = math.Min(p.Min, l)
		p.Max = math.Max(p.Max, l)
		n++
	}
	if n == 0 {
		return LogProfile{empty: true}
	}
	return p
}

// Empty reports whether the profile was fitted on no usable values.
func (p LogProfile) Empty() bool { return p.empty }

// Degenerate reports whether all fitted values compress to the same point.
func (p LogProfile) Degenerate() bool {
	return !p.empty && p.Max-p.Min < degenerateSpan
}

// Normalize rescales log10(v+1) into [0, 1] relative to the fitted batch.
// An empty profile yields 0 and a degenerate one yields 0.5.
func (p LogProfile) Normalize(v float64) float64 {
	switch {
	case p.empty, !isFinite(v):
		return 0
	case p.Degenerate():
		return degenerateLogScore
	}
	return Clamp01((compress(v) - p.Min) / (p.Max - p.Min))
}

func compress(v float64) float64 {
	return math.Log10(math.Max(v, 0) + 1)
}
