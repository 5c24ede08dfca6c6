package dataset

import (
	"sort"
	"strings"
)

// Synonym lists, in priority order.
var (
	latKeys       = []string{"lat", "latitude", "y"}
	lngKeys       = []string{"lng", "lon", "longitude", "x"}
	idKeys        = []string{"id", "ref"}
	nameKeys      = []string{"name", "station_name", "title"}
	operatorKeys  = []string{"operator", "network"}
	addressKeys   = []string{"address", "addr_full", "street"}
	connectorKeys = []string{"number_connectors", "connectors", "connector_count", "num_connectors", "num_points", "plugs"}
	powerKeys     = []string{"estimated_power_kw", "power_kw", "total_power_kw", "puissance_installee_kw"}
	tmjaKeys      = []string{"tmja"}
	ratioPLKeys   = []string{"ratioPL", "ratio_pl"}
	lengthKeys    = []string{"length_m", "longueur"}
	prStartKeys   = []string{"pr_start", "prD"}
	prEndKeys     = []string{"pr_end", "prF"}
	routeKeys     = []string{"route"}
	yearKeys      = []string{"annee", "year"}
	typeKeys      = []string{"type"}
	intensityKeys = []string{"c", "value", "intensity"}
)

// fields is one decoded JSON object with case-insensitive, synonym-aware
// lookups. Null values count as absent.
type fields struct {
	values map[string]any
	keys   []string // sorted, for deterministic case-folded matches
}

func newFields(values map[string]any) fields {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fields{values: values, keys: keys}
}

// lookup returns the first non-null value among synonyms. For each synonym an
// exact key wins over a case-folded one; among case-folded candidates the
// lexically smallest key wins.
func (f fields) lookup(synonyms ...string) (any, bool) {
	for _, name := range synonyms {
		if v, ok := f.values[name]; ok && v != nil {
			return v, true
		}
		for _, k := range f.keys {
			if k != name && strings.EqualFold(k, name) {
				if v := f.values[k]; v != nil {
					return v, true
				}
			}
		}
	}
	return nil, false
}

// float returns the first synonym that coerces to a finite number.
func (f fields) float(synonyms ...string) (float64, bool) {
	for _, name := range synonyms {
		if v, ok := f.lookup(name); ok {
			if n, ok := Float(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func (f fields) floatPtr(synonyms ...string) *float64 {
	if n, ok := f.float(synonyms...); ok {
		return &n
	}
	return nil
}

func (f fields) text(synonyms ...string) string {
	for _, name := range synonyms {
		if v, ok := f.lookup(name); ok {
			if s := String(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func (f fields) latLng() (lat, lng float64, ok bool) {
	lat, okLat := f.float(latKeys...)
	lng, okLng := f.float(lngKeys...)
	return lat, lng, okLat && okLng
}
