// Package geo holds the distance and coordinate math shared by the spatial
// scoring code. Everything here is pure and allocation-free.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

const (
	// EarthRadiusMeters is the mean spherical radius used for great-circle distances.
	EarthRadiusMeters = 6371000.0

	// MetersPerDegreeLatitude approximates the length of one degree of latitude.
	MetersPerDegreeLatitude = 111320.0

	// minCosLatitude floors |cos(lat)| so longitude spans stay bounded near the poles.
	minCosLatitude = 0.05

	degToRad = math.Pi / 180.0
)

// HaversineDistanceMeters returns the great-circle distance between two
// WGS-84 points on a sphere of radius EarthRadiusMeters. The result is exactly
// symmetric in its arguments and 0 for identical points.
func HaversineDistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	cosProduct := math.Cos(lat1*degToRad) * math.Cos(lat2*degToRad)

	a := sinLat*sinLat + cosProduct*(sinLon*sinLon)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(math.Max(0, 1-a)))
	return EarthRadiusMeters * c
}

// DegreesLatitudePerMeter converts meters to degrees of latitude.
func DegreesLatitudePerMeter() float64 {
	return 1 / MetersPerDegreeLatitude
}

// DegreesLongitudePerMeter converts meters to degrees of longitude at the given
// latitude. |cos(lat)| is floored at 0.05 to avoid blow-up near the poles.
func DegreesLongitudePerMeter(atLatitude float64) float64 {
	cosLat := math.Abs(math.Cos(atLatitude * degToRad))
	if cosLat < minCosLatitude {
		cosLat = minCosLatitude
	}
	return 1 / (MetersPerDegreeLatitude * cosLat)
}

// boxSlack widens the search box by a relative margin so rounding never
// excludes a point lying exactly on the radius.
const boxSlack = 1e-9

// SearchBox is a degree-space bounding box around a point. It is a cheap
// pre-filter in front of the exact haversine check and may over-include, but
// never excludes a point within the radius on the EarthRadiusMeters sphere.
type SearchBox struct {
	Bound     orb.Bound
	LatRadius float64
	LngRadius float64
	// AllLongitudes is set when the radius reaches a pole, where every
	// longitude can be in range.
	AllLongitudes bool
	center        orb.Point
}

// NewSearchBox builds the box covering radiusMeters around (lat, lng). The
// latitude span is the angular radius itself; the longitude span is the
// widest meridian offset reachable within it, asin(sin θ / cos lat).
func NewSearchBox(lat, lng, radiusMeters float64) SearchBox {
	theta := math.Max(radiusMeters, 0) / EarthRadiusMeters
	latRadius := theta / degToRad * (1 + boxSlack)

	lngRadius := 180.0
	all := math.Abs(lat)+latRadius >= 90 || theta >= math.Pi/2
	if !all {
		ratio := math.Min(1, math.Sin(theta)/math.Cos(lat*degToRad))
		lngRadius = math.Asin(ratio) / degToRad * (1 + boxSlack)
	}

	return SearchBox{
		Bound: orb.Bound{
			Min: orb.Point{lng - lngRadius, lat - latRadius},
			Max: orb.Point{lng + lngRadius, lat + latRadius},
		},
		LatRadius:     latRadius,
		LngRadius:     lngRadius,
		AllLongitudes: all,
		center:        orb.Point{lng, lat},
	}
}

// Contains reports whether (lat, lng) falls inside the box. Longitudes are
// compared modulo 360 so boxes that straddle the antimeridian still match.
func (b SearchBox) Contains(lat, lng float64) bool {
	if b.Bound.Contains(orb.Point{lng, lat}) {
		return true
	}
	if math.Abs(lat-b.center.Lat()) > b.LatRadius {
		return false
	}
	if b.AllLongitudes {
		return true
	}
	dLng := math.Mod(math.Abs(lng-b.center.Lon()), 360)
	if dLng > 180 {
		dLng = 360 - dLng
	}
	return dLng <= b.LngRadius
}

// LineLengthMeters returns the geodesic length of a polyline given in
// (lon, lat) order.
func LineLengthMeters(line orb.LineString) float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += HaversineDistanceMeters(line[i-1].Lat(), line[i-1].Lon(), line[i].Lat(), line[i].Lon())
	}
	return total
}

// LineMidpoint returns the point halfway along the polyline by geodesic
// length. The crossing edge is interpolated on the sphere. An empty line
// returns ok=false.
func LineMidpoint(line orb.LineString) (orb.Point, bool) {
	switch len(line) {
	case 0:
		return orb.Point{}, false
	case 1:
		return line[0], true
	}

	half := LineLengthMeters(line) / 2
	walked := 0.0
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		edge := HaversineDistanceMeters(a.Lat(), a.Lon(), b.Lat(), b.Lon())
		if walked+edge >= half {
			if edge == 0 {
				return a, true
			}
			t := (half - walked) / edge
			p := s2.Interpolate(t,
				s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat(), a.Lon())),
				s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat(), b.Lon())),
			)
			ll := s2.LatLngFromPoint(p)
			return orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()}, true
		}
		walked += edge
	}
	return line[len(line)-1], true
}
