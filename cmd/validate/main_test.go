package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifiers(t *testing.T) {
	ds := domain.Datasets{
		Stations: []domain.StationRecord{{ID: "a"}, {ID: "b"}, {ID: "a"}},
		Segments: []domain.TrafficSegment{{ID: ""}},
	}

	p := validateIdentifiers(ds)

	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], `share id "a"`)
	assert.Contains(t, p.errors[1], "empty id")
}

func TestValidateCoordinates(t *testing.T) {
	ds := domain.Datasets{
		Stations:   []domain.StationRecord{{ID: "ok", Lat: 48.85, Lng: 2.35}},
		Congestion: []domain.CongestionTile{{ID: "bad", Lat: 91, Lng: 0}},
	}

	p := validateCoordinates(ds)

	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], `tile "bad"`)
}

func TestValidateLayers(t *testing.T) {
	ds := domain.Datasets{
		Stations: []domain.StationRecord{{ID: "s", Lat: 48.85, Lng: 2.35, Connectors: 4, ConnectorsKnown: true}},
		Segments: []domain.TrafficSegment{
			{ID: "a", Lat: 48.85, Lng: 2.35, TMJA: 30000},
			{ID: "b", Lat: 45.76, Lng: 4.83, TMJA: 12000},
			{ID: "c", Lat: 43.29, Lng: 5.37, TMJA: 0},
		},
	}

	layers := buildLayers(ds, domain.DefaultNeedParams(), 2)
	p := validateLayers(ds, layers)

	assert.True(t, p.passed(), p.errors)
	assert.Len(t, layers.Need.Points, 2)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	stations := filepath.Join(dir, "stations.json")
	require.NoError(t, os.WriteFile(stations, []byte(`[{"id":"s","lat":48.85,"lng":2.35,"connectors":2}]`), 0o600))
	segments := filepath.Join(dir, "segments.json")
	require.NoError(t, os.WriteFile(segments, []byte(`[{"id":"a","lat":48.86,"lng":2.36,"tmja":15000}]`), 0o600))
	out := filepath.Join(dir, "layers.json")

	code := run(options{
		stationsPath: stations,
		segmentsPath: segments,
		outPath:      out,
		generatedAt:  "2025-01-01T00:00:00Z",
		radius:       domain.DefaultRadiusMeters,
		workers:      1,
	})

	assert.Equal(t, 0, code)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"generated_at": "2025-01-01T00:00:00Z"`)
	assert.Contains(t, string(data), `"segment_id": "a"`)
}

func TestRun_MissingFile(t *testing.T) {
	code := run(options{stationsPath: filepath.Join(t.TempDir(), "missing.json"), radius: 1000, workers: 1})
	assert.Equal(t, 1, code)
}
