// Package domain models the datasets and layers of the charging-need map.
//
// # Data Sources
//
// Two independently collected datasets feed every layer:
//
//   - EV charging stations, merged from several open-data exports. Records come
//     either as a GeoJSON FeatureCollection of Point features or as a flat JSON
//     array, and field names vary between sources (see package dataset).
//   - Road traffic counts (TMJA, "trafic moyen journalier annuel") for the
//     national road network, one record per counted segment.
//
// An optional third dataset holds live congestion tiles
// (FeatureCollection -> properties.tiledData.tiles[]).
//
// # Field Conventions
//
// Coordinates:
//
//	WGS-84 decimal degrees. GeoJSON positions are [lon, lat]; flat records use
//	named fields. A record without both a finite latitude and longitude is
//	dropped during decoding.
//
// Traffic:
//
//	tmja     vehicles/day, must be > 0 for the segment to carry demand.
//	ratioPL  heavy-vehicle share in percent (0-100); absent means no boost.
//	length_m segment length in meters; absent defaults to 1000, floored at 100.
//
// Stations:
//
//	connectors  number of charge points; absent or unparseable defaults to 1,
//	            since a listed station has at least one charger.
//	power (kW)  optional installed power, used only for display filtering.
//
// # Layers
//
// Each build produces four layers from the same input snapshot:
//
//	ev          station heatmap, weight = clamp(connectors/6, 0.35, 1.2)
//	traffic     quantile-normalized tmja, top 3% may exceed 1.0
//	congestion  weight = clamp(intensity/40, 0.25, 1.1)
//	need        demand x scarcity composite, need in [0,1],
//	            weight = 0.35 + 0.85*need
//
// Layers carry no persisted identity; they are recomputed whenever the inputs
// or the scoring parameters change.
package domain
