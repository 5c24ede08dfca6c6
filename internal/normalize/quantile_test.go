package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestFitQuantile_Breakpoints(t *testing.T) {
	// 101 values 1..101: index round(p*100) picks value p*100+1.
	p := FitQuantile(seq(101), SupplyBrackets)

	assert.Equal(t, [8]float64{1, 11, 26, 51, 76, 91, 98, 101}, p.Breakpoints())
	assert.False(t, p.Empty())
	assert.False(t, p.Degenerate())
}

func TestFitQuantile_IgnoresNonFiniteAndUnsorted(t *testing.T) {
	p := FitQuantile([]float64{5, math.NaN(), 1, 3, math.Inf(1), 2, 4}, SupplyBrackets)
	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 5.0, p.Max)
	assert.Equal(t, 3.0, p.Q50)
}

func TestQuantileProfile_Empty(t *testing.T) {
	p := FitQuantile(nil, SupplyBrackets)
	assert.True(t, p.Empty())
	assert.Equal(t, 0.0, p.Normalize(10))
}

func TestQuantileProfile_Degenerate(t *testing.T) {
	t.Run("single element supply", func(t *testing.T) {
		p := FitQuantile([]float64{12.5}, SupplyBrackets)
		require.True(t, p.Degenerate())
		assert.InDelta(t, 0.085, p.Normalize(12.5), 1e-12)
		assert.InDelta(t, 0.085, p.Normalize(1000), 1e-12)
		assert.InDelta(t, 0.085, p.Normalize(0.1), 1e-12)
	})

	t.Run("single element traffic", func(t *testing.T) {
		p := FitQuantile([]float64{20000}, TrafficBrackets)
		assert.InDelta(t, 0.115, p.Normalize(20000), 1e-12)
	})

	t.Run("non-positive still zero", func(t *testing.T) {
		p := FitQuantile([]float64{3, 3, 3}, SupplyBrackets)
		assert.Equal(t, 0.0, p.Normalize(0))
		assert.Equal(t, 0.0, p.Normalize(-3))
	})
}

func TestQuantileProfile_NonPositiveAndNonFinite(t *testing.T) {
	p := FitQuantile(seq(50), TrafficBrackets)
	assert.Equal(t, 0.0, p.Normalize(0))
	assert.Equal(t, 0.0, p.Normalize(-1))
	assert.Equal(t, 0.0, p.Normalize(math.NaN()))
	assert.Equal(t, 0.0, p.Normalize(math.Inf(1)))
}

func TestQuantileProfile_BracketEdges(t *testing.T) {
	p := FitQuantile(seq(101), SupplyBrackets)

	assert.InDelta(t, 0.02, p.Normalize(1), 1e-12)
	assert.InDelta(t, 0.15, p.Normalize(11), 1e-12)
	assert.InDelta(t, 0.30, p.Normalize(26), 1e-12)
	assert.InDelta(t, 0.50, p.Normalize(51), 1e-12)
	assert.InDelta(t, 0.70, p.Normalize(76), 1e-12)
	assert.InDelta(t, 0.88, p.Normalize(91), 1e-12)
	assert.InDelta(t, 0.95, p.Normalize(98), 1e-12)
	assert.InDelta(t, 1.00, p.Normalize(101), 1e-12)

	// Halfway through (q25, q50] = (26, 51].
	assert.InDelta(t, 0.40, p.Normalize(38.5), 1e-12)
	// Above max clamps to the top of the table.
	assert.InDelta(t, 1.00, p.Normalize(1e6), 1e-12)
}

func TestQuantileProfile_TrafficTableExceedsOne(t *testing.T) {
	p := FitQuantile(seq(101), TrafficBrackets)
	assert.InDelta(t, 1.15, p.Normalize(101), 1e-12)
	assert.InDelta(t, 0.98, p.Normalize(98), 1e-12)
	assert.InDelta(t, 0.05, p.Normalize(1), 1e-12)
}

func TestQuantileProfile_OutputsWithinBracketAndMonotonic(t *testing.T) {
	// Heavy-tailed batch with repeated values.
	batch := []float64{0, 0, 0, 0.4, 0.4, 1.1, 2.5, 2.5, 2.5, 3.9, 7.2, 15, 15, 44, 120, 900}

	for _, table := range []BracketTable{SupplyBrackets, TrafficBrackets} {
		p := FitQuantile(batch, table)
		bp := p.Breakpoints()

		prev := 0.0
		for v := 0.01; v < 1200; v *= 1.07 {
			got := p.Normalize(v)
			assert.GreaterOrEqual(t, got, prev, "v=%v", v)
			prev = got

			i := bracketIndex(bp, v)
			assert.GreaterOrEqual(t, got, table[i].Lo, "v=%v", v)
			assert.LessOrEqual(t, got, table[i].Hi, "v=%v", v)
		}
	}
}

func bracketIndex(bp [8]float64, v float64) int {
	for i := 0; i < 6; i++ {
		if v <= bp[i+1] {
			return i
		}
	}
	return 6
}
