package dataset

import (
	"fmt"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/geo"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

// DecodeSegments decodes a traffic segments file. LineString features are
// reduced to their geodesic midpoint, and their geodesic length stands in for
// a missing length_m. Segments without coordinates or without a numeric tmja
// are dropped; tmja <= 0 is kept and left for scoring to skip.
func DecodeSegments(data []byte) ([]domain.TrafficSegment, domain.DatasetReport, error) {
	report := domain.DatasetReport{Dataset: domain.DatasetSegments}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, report, fmt.Errorf("decode segments: %w", err)
	}

	segments := make([]domain.TrafficSegment, 0, doc.len())
	for i, feature := range doc.features {
		if seg, ok := segmentFromFeature(feature, i); ok {
			segments = append(segments, seg)
		}
	}
	for i, obj := range doc.objects {
		if obj == nil {
			continue
		}
		f := newFields(obj)
		lat, lng, ok := f.latLng()
		if !ok {
			continue
		}
		if seg, ok := segmentFrom(f, "", lat, lng, i); ok {
			segments = append(segments, seg)
		}
	}

	report.Total = doc.len()
	report.Kept = len(segments)
	report.Dropped = report.Total - report.Kept
	return segments, report, nil
}

func segmentFromFeature(feature *geojson.Feature, index int) (domain.TrafficSegment, bool) {
	if feature == nil {
		return domain.TrafficSegment{}, false
	}
	f := newFields(feature.Properties)

	var geomLength float64
	lat, lng, ok := pointOf(feature.Geometry)
	if !ok {
		if line := lineOf(feature.Geometry); len(line) > 0 {
			if mid, found := geo.LineMidpoint(line); found && isFinite(mid.Lat()) && isFinite(mid.Lon()) {
				lat, lng, ok = mid.Lat(), mid.Lon(), true
				geomLength = geo.LineLengthMeters(line)
			}
		}
	}
	if !ok {
		if lat, lng, ok = f.latLng(); !ok {
			return domain.TrafficSegment{}, false
		}
	}

	seg, ok := segmentFrom(f, String(feature.ID), lat, lng, index)
	if ok && seg.LengthM == nil && geomLength > 0 {
		seg.LengthM = &geomLength
	}
	return seg, ok
}

func segmentFrom(f fields, featureID string, lat, lng float64, index int) (domain.TrafficSegment, bool) {
	tmja, ok := f.float(tmjaKeys...)
	if !ok {
		return domain.TrafficSegment{}, false
	}

	seg := domain.TrafficSegment{
		ID:      f.text("id"),
		Route:   f.text(routeKeys...),
		Year:    f.text(yearKeys...),
		Type:    f.text(typeKeys...),
		Lat:     lat,
		Lng:     lng,
		TMJA:    tmja,
		RatioPL: f.floatPtr(ratioPLKeys...),
		LengthM: f.floatPtr(lengthKeys...),
		PRStart: f.floatPtr(prStartKeys...),
		PREnd:   f.floatPtr(prEndKeys...),
	}
	if seg.ID == "" {
		seg.ID = featureID
	}
	if seg.ID == "" {
		route := seg.Route
		if route == "" {
			route = "segment"
		}
		seg.ID = fmt.Sprintf("%s-%d", route, index)
	}
	return seg, true
}

// lineOf returns the LineString of a geometry, or the longest part of a
// MultiLineString.
func lineOf(g *geojson.Geometry) orb.LineString {
	if g == nil {
		return nil
	}
	switch {
	case g.IsLineString():
		return toLineString(g.LineString)
	case g.IsMultiLineString():
		var best orb.LineString
		bestLength := -1.0
		for _, part := range g.MultiLineString {
			line := toLineString(part)
			if length := geo.LineLengthMeters(line); len(line) > 0 && length > bestLength {
				best, bestLength = line, length
			}
		}
		return best
	}
	return nil
}

func toLineString(coords [][]float64) orb.LineString {
	line := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 || !isFinite(c[0]) || !isFinite(c[1]) {
			continue
		}
		line = append(line, orb.Point{c[0], c[1]})
	}
	return line
}
