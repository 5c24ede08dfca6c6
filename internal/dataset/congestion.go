package dataset

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	geojson "github.com/paulmach/go.geojson"
)

// DecodeCongestionTiles decodes a live-congestion export. Features may carry
// a tile grid under properties.tiledData.tiles, or be single Point features
// with an intensity property; a flat array lists tiles directly. Tiles need
// finite coordinates and a numeric intensity.
func DecodeCongestionTiles(data []byte) ([]domain.CongestionTile, domain.DatasetReport, error) {
	report := domain.DatasetReport{Dataset: domain.DatasetCongestion}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, report, fmt.Errorf("decode congestion: %w", err)
	}

	var tiles []domain.CongestionTile
	for i, feature := range doc.features {
		kept, total := tilesFromFeature(feature, i, &tiles)
		report.Total += total
		report.Kept += kept
	}
	for i, obj := range doc.objects {
		report.Total++
		if obj == nil {
			continue
		}
		if tile, ok := tileFrom(newFields(obj), strconv.Itoa(i)); ok {
			tiles = append(tiles, tile)
			report.Kept++
		}
	}
	if tiles == nil {
		tiles = []domain.CongestionTile{}
	}

	report.Dropped = report.Total - report.Kept
	return tiles, report, nil
}

// tilesFromFeature appends the tiles of one feature and returns how many it
// kept out of how many it saw.
func tilesFromFeature(feature *geojson.Feature, index int, out *[]domain.CongestionTile) (kept, total int) {
	if feature == nil {
		return 0, 1
	}
	featureID := String(feature.ID)
	if featureID == "" {
		featureID = strconv.Itoa(index)
	}

	f := newFields(feature.Properties)
	if grid, ok := tileGrid(f); ok {
		for j, raw := range grid {
			obj, isObj := raw.(map[string]any)
			if !isObj {
				continue
			}
			if tile, ok := tileFrom(newFields(obj), fmt.Sprintf("%s-%d", featureID, j)); ok {
				*out = append(*out, tile)
				kept++
			}
		}
		return kept, len(grid)
	}

	lat, lng, ok := pointOf(feature.Geometry)
	if !ok {
		return 0, 1
	}
	intensity, ok := f.float(intensityKeys...)
	if !ok {
		return 0, 1
	}
	*out = append(*out, domain.CongestionTile{ID: featureID, Lat: lat, Lng: lng, Intensity: intensity})
	return 1, 1
}

func tileGrid(f fields) ([]any, bool) {
	v, ok := f.lookup("tiledData")
	if !ok {
		return nil, false
	}
	tiled, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	grid, ok := newFields(tiled).lookup("tiles")
	if !ok {
		return nil, false
	}
	tiles, ok := grid.([]any)
	return tiles, ok
}

func tileFrom(f fields, fallbackID string) (domain.CongestionTile, bool) {
	lat, lng, ok := f.latLng()
	if !ok {
		return domain.CongestionTile{}, false
	}
	intensity, ok := f.float(intensityKeys...)
	if !ok {
		return domain.CongestionTile{}, false
	}
	id := f.text("id")
	if id == "" {
		id = fallbackID
	}
	return domain.CongestionTile{ID: id, Lat: lat, Lng: lng, Intensity: intensity}, true
}
