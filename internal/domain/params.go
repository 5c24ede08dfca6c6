package domain

import "math"

// Default need-scoring parameters.
const (
	DefaultRadiusMeters = 6000.0
	DefaultAlpha        = 0.75
	DefaultBeta         = 1.25
	DefaultGamma        = 1.2
	DefaultDelta        = 1.8
)

// NeedParams tunes the charging-need score.
type NeedParams struct {
	// RadiusMeters is the supply search radius around each segment.
	RadiusMeters float64 `json:"radius_meters"`
	// Alpha is the segment-length exponent in demand.
	Alpha float64 `json:"alpha"`
	// Beta weights the heavy-vehicle share in demand.
	Beta float64 `json:"beta"`
	// Gamma sharpens the normalized demand curve.
	Gamma float64 `json:"gamma"`
	// Delta sharpens the scarcity curve.
	Delta float64 `json:"delta"`
}

// DefaultNeedParams returns the stock parameter set.
func DefaultNeedParams() NeedParams {
	return NeedParams{
		RadiusMeters: DefaultRadiusMeters,
		Alpha:        DefaultAlpha,
		Beta:         DefaultBeta,
		Gamma:        DefaultGamma,
		Delta:        DefaultDelta,
	}
}

// WithDefaults replaces non-finite or out-of-range fields with their defaults:
// the radius must be positive, the other fields non-negative.
func (p NeedParams) WithDefaults() NeedParams {
	d := DefaultNeedParams()
	if !isFinite(p.RadiusMeters) || p.RadiusMeters <= 0 {
		p.RadiusMeters = d.RadiusMeters
	}
	p.Alpha = nonNegativeOr(p.Alpha, d.Alpha)
	p.Beta = nonNegativeOr(p.Beta, d.Beta)
	p.Gamma = nonNegativeOr(p.Gamma, d.Gamma)
	p.Delta = nonNegativeOr(p.Delta, d.Delta)
	return p
}

func nonNegativeOr(v, fallback float64) float64 {
	if !isFinite(v) || v < 0 {
		return fallback
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
