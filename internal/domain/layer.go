package domain

import "time"

// LayerKind names a map overlay.
type LayerKind string

// Known layers.
const (
	LayerEV         LayerKind = "ev"
	LayerTraffic    LayerKind = "traffic"
	LayerCongestion LayerKind = "congestion"
	LayerNeed       LayerKind = "need"
)

// HeatPoint is one weighted point of a plain heatmap layer.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"`
}

// ScoredPoint is one point of the charging-need layer. Demand and Supply are
// the normalized components the need score was composed from.
type ScoredPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Weight    float64 `json:"weight"`
	Need      float64 `json:"need"`
	Demand    float64 `json:"demand"`
	Supply    float64 `json:"supply"`
	SegmentID string  `json:"segment_id,omitempty"`
}

// HeatLayer is a computed plain heatmap.
type HeatLayer struct {
	Kind        LayerKind   `json:"layer"`
	GeneratedAt time.Time   `json:"generated_at"`
	Points      []HeatPoint `json:"points"`
}

// NeedLayer is a computed charging-need layer.
type NeedLayer struct {
	Kind        LayerKind     `json:"layer"`
	GeneratedAt time.Time     `json:"generated_at"`
	Params      NeedParams    `json:"params"`
	Points      []ScoredPoint `json:"points"`
}

// NewHeatLayer stamps points with the current time.
func NewHeatLayer(kind LayerKind, points []HeatPoint) HeatLayer {
	return HeatLayer{Kind: kind, GeneratedAt: clock.Now().UTC(), Points: points}
}

// NewNeedLayer stamps points with the current time.
func NewNeedLayer(params NeedParams, points []ScoredPoint) NeedLayer {
	return NeedLayer{Kind: LayerNeed, GeneratedAt: clock.Now().UTC(), Params: params, Points: points}
}

// Snapshot is the immutable result of one build. A rebuild produces a new
// snapshot with a higher Version.
type Snapshot struct {
	Version    uint64
	Datasets   Datasets
	EV         HeatLayer
	Traffic    HeatLayer
	Congestion HeatLayer
	Need       NeedLayer
}
