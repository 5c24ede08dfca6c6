package scoring

import (
	"math"
	"sort"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/geo"
	"github.com/paulmach/orb"
)

// decayFraction sets the exponential decay length relative to the search radius.
const decayFraction = 0.6

type stationPoint struct {
	lat        float64
	lng        float64
	connectors float64
}

// SupplyAggregator sums distance-decayed connector capacity around demand
// points. It is read-only after construction and safe for concurrent use.
type SupplyAggregator struct {
	stations    []stationPoint // sorted by latitude
	radius      float64
	decayLength float64
}

// NewSupplyAggregator indexes stations for lookups within radiusMeters.
// Stations without finite coordinates are skipped. A station with zero or
// unknown connectors counts as one connector.
func NewSupplyAggregator(stations []domain.StationRecord, radiusMeters float64) *SupplyAggregator {
	if !isFinite(radiusMeters) || radiusMeters <= 0 {
		radiusMeters = domain.DefaultRadiusMeters
	}

	pts := make([]stationPoint, 0, len(stations))
	for _, st := range stations {
		if !isFinite(st.Lat) || !isFinite(st.Lng) {
			continue
		}
		pts = append(pts, stationPoint{lat: st.Lat, lng: st.Lng, connectors: float64(max(st.Connectors, 1))})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].lat < pts[j].lat })

	return &SupplyAggregator{
		stations:    pts,
		radius:      radiusMeters,
		decayLength: decayFraction * radiusMeters,
	}
}

// Radius returns the search radius in meters.
func (a *SupplyAggregator) Radius() float64 { return a.radius }

// SupplyAt returns the raw supply around (lat, lng): the sum over stations
// within the radius of connectors * exp(-distance/decayLength). No station in
// range yields 0.
func (a *SupplyAggregator) SupplyAt(lat, lng float64) float64 {
	if len(a.stations) == 0 || !isFinite(lat) || !isFinite(lng) {
		return 0
	}

	box := geo.NewSearchBox(lat, lng, a.radius)
	minLat, maxLat := lat-box.LatRadius, lat+box.LatRadius
	first := sort.Search(len(a.stations), func(i int) bool { return a.stations[i].lat >= minLat })

	sum := 0.0
	for i := first; i < len(a.stations) && a.stations[i].lat <= maxLat; i++ {
		st := a.stations[i]
		if !box.Contains(st.lat, st.lng) {
			continue
		}
		d := geo.HaversineDistanceMeters(lat, lng, st.lat, st.lng)
		if d > a.radius {
			continue
		}
		sum += st.connectors * math.Exp(-d/a.decayLength)
	}
	return sum
}

// Aggregate returns one raw supply value per point. With workers > 1 the
// points are split across goroutines; each sum is still computed by a single
// goroutine in station order, so the result does not depend on workers.
func (a *SupplyAggregator) Aggregate(points []orb.Point, workers int) []float64 {
	out := make([]float64, len(points))
	forEachIndex(len(points), workers, func(i int) {
		out[i] = a.SupplyAt(points[i].Lat(), points[i].Lon())
	})
	return out
}
