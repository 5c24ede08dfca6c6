package scoring

import (
	"math"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/normalize"
)

// Station weight bounds: connectors/6 clamped to [0.35, 1.2].
const (
	stationConnectorScale = 6.0
	stationWeightMin      = 0.35
	stationWeightMax      = 1.2
)

// Congestion weight bounds: intensity/40 clamped to [0.25, 1.1].
const (
	congestionScale      = 40.0
	congestionWeightMin  = 0.25
	congestionWeightMax  = 1.1
	congestionWeightNone = 0.5
)

// TrafficHeatPoints weights each usable segment by the quantile rank of its
// tmja within the batch. The top 3% may exceed 1.0.
func TrafficHeatPoints(segments []domain.TrafficSegment) []domain.HeatPoint {
	values := make([]float64, 0, len(segments))
	for _, seg := range segments {
		if seg.Usable() {
			values = append(values, seg.TMJA)
		}
	}
	if len(values) == 0 {
		return []domain.HeatPoint{}
	}

	profile := normalize.FitQuantile(values, normalize.TrafficBrackets)

	out := make([]domain.HeatPoint, 0, len(values))
	for _, seg := range segments {
		if !seg.Usable() {
			continue
		}
		out = append(out, domain.HeatPoint{Lat: seg.Lat, Lng: seg.Lng, Weight: profile.Normalize(seg.TMJA)})
	}
	return out
}

// StationWeight maps a station's connector count to a heat intensity.
func StationWeight(st domain.StationRecord) float64 {
	connectors := float64(st.Connectors)
	if !st.ConnectorsKnown {
		connectors = 1
	}
	return clamp(connectors/stationConnectorScale, stationWeightMin, stationWeightMax)
}

// StationHeatPoints returns one point per station with finite coordinates.
func StationHeatPoints(stations []domain.StationRecord) []domain.HeatPoint {
	out := make([]domain.HeatPoint, 0, len(stations))
	for _, st := range stations {
		if !isFinite(st.Lat) || !isFinite(st.Lng) {
			continue
		}
		out = append(out, domain.HeatPoint{Lat: st.Lat, Lng: st.Lng, Weight: StationWeight(st)})
	}
	return out
}

// CongestionWeight maps a tile intensity to a heat intensity. Non-finite
// intensities get a neutral 0.5.
func CongestionWeight(intensity float64) float64 {
	if !isFinite(intensity) {
		return congestionWeightNone
	}
	return clamp(intensity/congestionScale, congestionWeightMin, congestionWeightMax)
}

// CongestionHeatPoints returns one point per tile with finite coordinates.
func CongestionHeatPoints(tiles []domain.CongestionTile) []domain.HeatPoint {
	out := make([]domain.HeatPoint, 0, len(tiles))
	for _, tile := range tiles {
		if !isFinite(tile.Lat) || !isFinite(tile.Lng) {
			continue
		}
		out = append(out, domain.HeatPoint{Lat: tile.Lat, Lng: tile.Lng, Weight: CongestionWeight(tile.Intensity)})
	}
	return out
}

// FilterStationsByPower keeps stations whose estimated power is at least
// minKW. Stations with unknown power are dropped once a threshold is set.
func FilterStationsByPower(stations []domain.StationRecord, minKW float64) []domain.StationRecord {
	if minKW <= 0 {
		return stations
	}
	out := make([]domain.StationRecord, 0, len(stations))
	for _, st := range stations {
		if st.EstimatedPowerKW != nil && *st.EstimatedPowerKW >= minKW {
			out = append(out, st)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
