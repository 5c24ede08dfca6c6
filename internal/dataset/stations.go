package dataset

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	geojson "github.com/paulmach/go.geojson"
)

// DecodeStations decodes a stations file. Point features take their
// coordinates from the geometry; array entries and features without a point
// fall back to lat/lng-like properties.
func DecodeStations(data []byte) ([]domain.StationRecord, domain.DatasetReport, error) {
	report := domain.DatasetReport{Dataset: domain.DatasetStations}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, report, fmt.Errorf("decode stations: %w", err)
	}

	stations := make([]domain.StationRecord, 0, doc.len())
	for i, feature := range doc.features {
		if st, ok := stationFromFeature(feature, i); ok {
			stations = append(stations, st)
		}
	}
	for i, obj := range doc.objects {
		if obj == nil {
			continue
		}
		f := newFields(obj)
		if lat, lng, ok := f.latLng(); ok {
			stations = append(stations, stationFrom(f, "", lat, lng, i))
		}
	}

	report.Total = doc.len()
	report.Kept = len(stations)
	report.Dropped = report.Total - report.Kept
	return stations, report, nil
}

func stationFromFeature(feature *geojson.Feature, index int) (domain.StationRecord, bool) {
	if feature == nil {
		return domain.StationRecord{}, false
	}
	f := newFields(feature.Properties)
	lat, lng, ok := pointOf(feature.Geometry)
	if !ok {
		if lat, lng, ok = f.latLng(); !ok {
			return domain.StationRecord{}, false
		}
	}
	return stationFrom(f, String(feature.ID), lat, lng, index), true
}

func stationFrom(f fields, featureID string, lat, lng float64, index int) domain.StationRecord {
	st := domain.StationRecord{
		ID:               f.text(idKeys...),
		Name:             f.text(nameKeys...),
		Operator:         f.text(operatorKeys...),
		Address:          f.text(addressKeys...),
		Lat:              lat,
		Lng:              lng,
		Connectors:       1,
		EstimatedPowerKW: f.floatPtr(powerKeys...),
	}
	if st.ID == "" {
		st.ID = featureID
	}
	if st.ID == "" {
		st.ID = strconv.Itoa(index)
	}
	for _, key := range connectorKeys {
		v, ok := f.lookup(key)
		if !ok {
			continue
		}
		if n, ok := NonNegativeInt(v); ok {
			st.Connectors = n
			st.ConnectorsKnown = true
			break
		}
	}
	return st
}
