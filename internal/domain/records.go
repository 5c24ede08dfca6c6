package domain

// StationRecord is a canonical EV charging station.
type StationRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Operator string `json:"operator,omitempty"`
	Address  string `json:"address,omitempty"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	// Connectors defaults to 1 when the source omits it or it does not parse.
	Connectors      int  `json:"connectors"`
	ConnectorsKnown bool `json:"connectors_known"`

	EstimatedPowerKW *float64 `json:"estimated_power_kw,omitempty"`
}

// TrafficSegment is a road segment reduced to one representative point.
type TrafficSegment struct {
	ID    string `json:"id"`
	Route string `json:"route,omitempty"`
	Year  string `json:"annee,omitempty"`
	Type  string `json:"type,omitempty"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	// TMJA is the average daily traffic volume (vehicles/day).
	TMJA float64 `json:"tmja"`
	// RatioPL is the heavy-vehicle share in percent.
	RatioPL *float64 `json:"ratioPL,omitempty"`
	LengthM *float64 `json:"length_m,omitempty"`

	PRStart *float64 `json:"pr_start,omitempty"`
	PREnd   *float64 `json:"pr_end,omitempty"`
}

// Usable reports whether the segment can feed demand computations.
func (s TrafficSegment) Usable() bool {
	return isFinite(s.Lat) && isFinite(s.Lng) && isFinite(s.TMJA) && s.TMJA > 0
}

// CongestionTile is one cell of a live-congestion tile grid.
type CongestionTile struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"`
}

// Dataset names used in reports, logs and metrics.
const (
	DatasetStations   = "stations"
	DatasetSegments   = "segments"
	DatasetCongestion = "congestion"
)

// DatasetReport counts the records a decoder saw, kept and dropped.
type DatasetReport struct {
	Dataset string `json:"dataset"`
	Total   int    `json:"total"`
	Kept    int    `json:"kept"`
	Dropped int    `json:"dropped"`
}

// Datasets groups the decoded inputs of one build.
type Datasets struct {
	Stations   []StationRecord
	Segments   []TrafficSegment
	Congestion []CongestionTile
}
