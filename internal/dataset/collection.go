package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

// ErrEmptyPayload is returned when a dataset file contains no JSON value.
var ErrEmptyPayload = errors.New("empty payload")

// document is one parsed input file. Exactly one of features or objects is
// populated; nil entries stand for elements that could not be read and are
// counted as dropped.
type document struct {
	features []*geojson.Feature
	objects  []map[string]any
}

func (d document) len() int { return len(d.features) + len(d.objects) }

// parseDocument accepts a GeoJSON FeatureCollection, a single Feature, or a
// flat JSON array of objects. Any other JSON value parses to an empty document.
func parseDocument(data []byte) (document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return document{}, ErrEmptyPayload
	}

	switch trimmed[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return document{}, fmt.Errorf("decode array: %w", err)
		}
		objects := make([]map[string]any, len(elems))
		for i, raw := range elems {
			objects[i] = decodeObject(raw)
		}
		return document{objects: objects}, nil

	case '{':
		var head struct {
			Type     string            `json:"type"`
			Features []json.RawMessage `json:"features"`
		}
		if err := json.Unmarshal(trimmed, &head); err != nil {
			return document{}, fmt.Errorf("decode object: %w", err)
		}
		switch {
		case strings.EqualFold(head.Type, "FeatureCollection"):
			features := make([]*geojson.Feature, len(head.Features))
			for i, raw := range head.Features {
				features[i] = decodeFeature(raw)
			}
			return document{features: features}, nil
		case strings.EqualFold(head.Type, "Feature"):
			return document{features: []*geojson.Feature{decodeFeature(trimmed)}}, nil
		}
		return document{}, nil

	default:
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return document{}, fmt.Errorf("decode: %w", err)
		}
		return document{}, nil
	}
}

// decodeObject decodes one array element, keeping numbers as json.Number.
func decodeObject(raw json.RawMessage) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil
	}
	return obj
}

// decodeFeature decodes one feature. A feature whose geometry is malformed
// keeps its id and properties so coordinates can still come from properties.
func decodeFeature(raw json.RawMessage) *geojson.Feature {
	if f, err := geojson.UnmarshalFeature(raw); err == nil {
		return f
	}
	var lenient struct {
		ID         any            `json:"id"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(raw, &lenient); err != nil {
		return nil
	}
	return &geojson.Feature{ID: lenient.ID, Type: "Feature", Properties: lenient.Properties}
}

// pointOf returns (lat, lng) from a Point geometry.
func pointOf(g *geojson.Geometry) (lat, lng float64, ok bool) {
	if g == nil || !g.IsPoint() || len(g.Point) < 2 {
		return 0, 0, false
	}
	lng, lat = g.Point[0], g.Point[1]
	return lat, lng, isFinite(lat) && isFinite(lng)
}
