package dataset

import (
	"testing"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const congestionExport = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "grid",
     "geometry": {"type": "Polygon", "coordinates": [[[2, 48], [3, 48], [3, 49], [2, 48]]]},
     "properties": {"tiledData": {"tiles": [
       {"lat": 48.8, "lon": 2.3, "c": 12},
       {"y": "48.9", "x": "2.4", "value": "30"},
       {"lat": 48.8, "lon": 2.3},
       "bad"
     ]}}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [2.5, 48.7]},
     "properties": {"intensity": 5}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [2.5, 48.7]},
     "properties": {}}
  ]
}`

func TestDecodeCongestionTiles_FeatureCollection(t *testing.T) {
	tiles, report, err := DecodeCongestionTiles([]byte(congestionExport))
	require.NoError(t, err)
	assert.Equal(t, domain.DatasetReport{Dataset: domain.DatasetCongestion, Total: 6, Kept: 3, Dropped: 3}, report)

	assert.Equal(t, []domain.CongestionTile{
		{ID: "grid-0", Lat: 48.8, Lng: 2.3, Intensity: 12},
		{ID: "grid-1", Lat: 48.9, Lng: 2.4, Intensity: 30},
		{ID: "1", Lat: 48.7, Lng: 2.5, Intensity: 5},
	}, tiles)
}

func TestDecodeCongestionTiles_Array(t *testing.T) {
	tiles, report, err := DecodeCongestionTiles([]byte(`[{"id": "t", "lat": 1, "lng": 2, "intensity": "7"}, {"lat": 1}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Kept)
	assert.Equal(t, []domain.CongestionTile{{ID: "t", Lat: 1, Lng: 2, Intensity: 7}}, tiles)
}

func TestDecodeCongestionTiles_Empty(t *testing.T) {
	tiles, report, err := DecodeCongestionTiles([]byte(`{"type": "FeatureCollection", "features": []}`))
	require.NoError(t, err)
	assert.NotNil(t, tiles)
	assert.Empty(t, tiles)
	assert.Equal(t, 0, report.Total)
}
