package scoring

import (
	"math"
	"math/rand/v2"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/geo"
)

func ptr(v float64) *float64 { return &v }

func segment(id string, lat, lng, tmja float64) domain.TrafficSegment {
	return domain.TrafficSegment{ID: id, Lat: lat, Lng: lng, TMJA: tmja}
}

func station(lat, lng float64, connectors int) domain.StationRecord {
	return domain.StationRecord{Lat: lat, Lng: lng, Connectors: connectors, ConnectorsKnown: true}
}

// randomBatch builds a reproducible Île-de-France sized batch with a heavy
// tmja tail and clustered stations.
func randomBatch(seed uint64, nSegments, nStations int) ([]domain.TrafficSegment, []domain.StationRecord) {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	segments := make([]domain.TrafficSegment, nSegments)
	for i := range segments {
		seg := segment("", 48.5+r.Float64(), 1.8+1.2*r.Float64(), 500*r.ExpFloat64()*r.ExpFloat64()+1)
		if r.IntN(4) > 0 {
			seg.RatioPL = ptr(30 * r.Float64())
		}
		if r.IntN(3) > 0 {
			seg.LengthM = ptr(5000 * r.Float64())
		}
		segments[i] = seg
	}

	stations := make([]domain.StationRecord, nStations)
	for i := range stations {
		stations[i] = station(48.7+0.3*r.NormFloat64()*0.3, 2.35+0.3*r.NormFloat64()*0.3, r.IntN(12))
	}
	return segments, stations
}

// destination returns the point at meters along bearing (degrees clockwise
// from north) on the haversine sphere.
func destination(lat, lng, bearing, meters float64) (float64, float64) {
	const rad = math.Pi / 180
	phi, brg := lat*rad, bearing*rad
	delta := meters / geo.EarthRadiusMeters

	phi2 := math.Asin(math.Sin(phi)*math.Cos(delta) + math.Cos(phi)*math.Sin(delta)*math.Cos(brg))
	dLambda := math.Atan2(math.Sin(brg)*math.Sin(delta)*math.Cos(phi), math.Cos(delta)-math.Sin(phi)*math.Sin(phi2))
	return phi2 / rad, math.Remainder(lng+dLambda/rad, 360)
}
