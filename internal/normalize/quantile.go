package normalize

import (
	"math"
	"sort"
)

// Bracket is the output range assigned to one quantile interval.
type Bracket struct {
	Lo float64
	Hi float64
}

func (b Bracket) mid() float64 { return (b.Lo + b.Hi) / 2 }

// BracketTable holds the output ranges for the seven intervals
// [min,q10], (q10,q25], (q25,q50], (q50,q75], (q75,q90], (q90,q97], (q97,max].
type BracketTable [7]Bracket

// SupplyBrackets caps strictly at 1.0 for the need pipeline.
var SupplyBrackets = BracketTable{
	{0.02, 0.15},
	{0.15, 0.30},
	{0.30, 0.50},
	{0.50, 0.70},
	{0.70, 0.88},
	{0.88, 0.95},
	{0.95, 1.00},
}

// TrafficBrackets lets the top 3% reach 1.15 so outlier segments dominate the
// plain traffic heatmap.
var TrafficBrackets = BracketTable{
	{0.05, 0.18},
	{0.18, 0.28},
	{0.28, 0.45},
	{0.45, 0.68},
	{0.68, 0.85},
	{0.85, 0.98},
	{0.98, 1.15},
}

// quantileLevels are the inner breakpoints; min and max bound the table.
var quantileLevels = [...]float64{0.10, 0.25, 0.50, 0.75, 0.90, 0.97}

// QuantileProfile is a fitted set of empirical breakpoints together with the
// output table used to interpolate within each interval.
type QuantileProfile struct {
	Min, Q10, Q25, Q50, Q75, Q90, Q97, Max float64

	table BracketTable
	empty bool
}

// FitQuantile fits nearest-rank breakpoints over the finite values of the
// batch. The index for level p is round(p*(n-1)).
func FitQuantile(values []float64, table BracketTable) QuantileProfile {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return QuantileProfile{table: table, empty: true}
	}
	sort.Float64s(sorted)

	var q [len(quantileLevels)]float64
	for i, level := range quantileLevels {
		q[i] = pick(sorted, level)
	}

	return QuantileProfile{
		Min:   sorted[0],
		Q10:   q[0],
		Q25:   q[1],
		Q50:   q[2],
		Q75:   q[3],
		Q90:   q[4],
		Q97:   q[5],
		Max:   sorted[len(sorted)-1],
		table: table,
	}
}

func pick(sorted []float64, level float64) float64 {
	idx := int(math.Round(level * float64(len(sorted)-1)))
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// Empty reports whether the profile was fitted on no usable values.
func (p QuantileProfile) Empty() bool { return p.empty }

// Degenerate reports whether the fitted batch has no spread, e.g. a single
// element or all-equal values.
func (p QuantileProfile) Degenerate() bool {
	return !p.empty && p.Max-p.Min <= degenerateSpan
}

// Breakpoints returns min, q10, q25, q50, q75, q90, q97 and max in order.
func (p QuantileProfile) Breakpoints() [8]float64 {
	return [8]float64{p.Min, p.Q10, p.Q25, p.Q50, p.Q75, p.Q90, p.Q97, p.Max}
}

// Normalize locates the interval containing v and interpolates linearly into
// that interval's output range. Values <= 0 or non-finite map to 0. A
// degenerate profile maps every positive value to the midpoint of the lowest
// bracket.
func (p QuantileProfile) Normalize(v float64) float64 {
	switch {
	case p.empty, !isFinite(v), v <= 0:
		return 0
	case p.Degenerate():
		return p.table[0].mid()
	}

	bp := p.Breakpoints()
	for i := 0; i < len(p.table)-1; i++ {
		if v <= bp[i+1] {
			return scale(v, bp[i], bp[i+1], p.table[i])
		}
	}
	last := len(p.table) - 1
	return scale(v, bp[last], bp[last+1], p.table[last])
}

// scale maps v from [srcMin, srcMax] into the bracket, clamping at the ends.
// A collapsed source interval maps to the bracket midpoint.
func scale(v, srcMin, srcMax float64, dst Bracket) float64 {
	span := srcMax - srcMin
	if span <= degenerateSpan {
		return dst.mid()
	}
	ratio := math.Min(math.Max((v-srcMin)/span, 0), 1)
	return dst.Lo + ratio*(dst.Hi-dst.Lo)
}
