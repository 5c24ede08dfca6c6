package scoring

import (
	"math"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/normalize"
	"github.com/paulmach/orb"
)

const (
	defaultSegmentLengthM = 1000.0
	minSegmentLengthM     = 100.0

	// Rendering weight = needWeightBase + need*needWeightSpan, i.e. [0.35, 1.2].
	needWeightBase = 0.35
	needWeightSpan = 0.85
)

// NeedScorer composes normalized demand and normalized scarcity into a
// bounded charging-need score per traffic segment.
type NeedScorer struct {
	Params domain.NeedParams
	// Workers bounds the goroutines used for supply aggregation; <= 1 runs inline.
	Workers int
}

// NewNeedScorer returns a scorer for params.
func NewNeedScorer(params domain.NeedParams, workers int) *NeedScorer {
	return &NeedScorer{Params: params, Workers: workers}
}

// Score returns one point per usable segment. Segments without finite
// coordinates or with tmja <= 0 are skipped. With no stations every segment
// sees maximal scarcity; with no usable segments the result is empty.
func (s *NeedScorer) Score(segments []domain.TrafficSegment, stations []domain.StationRecord) []domain.ScoredPoint {
	params := s.Params.WithDefaults()

	usable := make([]domain.TrafficSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.Usable() {
			usable = append(usable, seg)
		}
	}
	if len(usable) == 0 {
		return []domain.ScoredPoint{}
	}

	// Pass 1: raw signals for the whole batch.
	demandRaw := make([]float64, len(usable))
	locations := make([]orb.Point, len(usable))
	for i, seg := range usable {
		demandRaw[i] = Demand(seg, params)
		locations[i] = orb.Point{seg.Lng, seg.Lat}
	}
	supplyRaw := NewSupplyAggregator(stations, params.RadiusMeters).Aggregate(locations, s.Workers)

	demandProfile := normalize.FitLog(demandRaw)
	supplyProfile := normalize.FitQuantile(supplyRaw, normalize.SupplyBrackets)

	// Pass 2: score against the fitted profiles.
	out := make([]domain.ScoredPoint, 0, len(usable))
	for i, seg := range usable {
		demandNorm := demandProfile.Normalize(demandRaw[i])
		supplyNorm := supplyProfile.Normalize(supplyRaw[i])
		need := ComposeNeed(demandNorm, supplyNorm, params)
		weight := needWeightBase + need*needWeightSpan
		if !isFinite(weight) {
			continue
		}
		out = append(out, domain.ScoredPoint{
			Lat:       seg.Lat,
			Lng:       seg.Lng,
			Weight:    weight,
			Need:      need,
			Demand:    demandNorm,
			Supply:    supplyNorm,
			SegmentID: seg.ID,
		})
	}
	return out
}

// Demand returns tmja * lengthKm^alpha * (1 + beta*heavyShare) for a segment.
// Missing length defaults to 1000 m and is floored at 100 m; a missing heavy
// vehicle share contributes nothing.
func Demand(seg domain.TrafficSegment, params domain.NeedParams) float64 {
	lengthM := defaultSegmentLengthM
	if seg.LengthM != nil && isFinite(*seg.LengthM) {
		lengthM = math.Max(*seg.LengthM, minSegmentLengthM)
	}

	heavyShare := 0.0
	if seg.RatioPL != nil && isFinite(*seg.RatioPL) {
		heavyShare = math.Max(*seg.RatioPL/100, 0)
	}

	return seg.TMJA * math.Pow(lengthM/1000, params.Alpha) * (1 + params.Beta*heavyShare)
}

// ComposeNeed returns clamp01(demandNorm^gamma * (1-supplyNorm)^delta).
func ComposeNeed(demandNorm, supplyNorm float64, params domain.NeedParams) float64 {
	demandTerm := math.Pow(demandNorm, params.Gamma)
	scarcityTerm := math.Pow(1-supplyNorm, params.Delta)
	return normalize.Clamp01(demandTerm * scarcityTerm)
}

// FilterByNeed keeps points whose need is at least minNeed. It is a display
// threshold and not part of scoring.
func FilterByNeed(points []domain.ScoredPoint, minNeed float64) []domain.ScoredPoint {
	if minNeed <= 0 {
		return points
	}
	out := make([]domain.ScoredPoint, 0, len(points))
	for _, p := range points {
		if p.Need >= minNeed {
			out = append(out, p)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
