package pipeline

import (
	"time"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/observability"
	"github.com/couchcryptid/charging-need-service/internal/scoring"
)

// LayerBuilder turns decoded datasets into map layers and records build
// metrics for each one.
type LayerBuilder struct {
	workers int
	metrics *observability.Metrics
}

// NewLayerBuilder creates a LayerBuilder. workers bounds the goroutines used
// for supply aggregation.
func NewLayerBuilder(workers int, metrics *observability.Metrics) *LayerBuilder {
	return &LayerBuilder{workers: workers, metrics: metrics}
}

// Build computes the four default layers for ds.
func (b *LayerBuilder) Build(ds domain.Datasets, params domain.NeedParams, version uint64) *domain.Snapshot {
	snap := &domain.Snapshot{
		Version:    version,
		Datasets:   ds,
		EV:         b.Stations(ds.Stations, 0),
		Traffic:    b.heat(domain.LayerTraffic, func() []domain.HeatPoint { return scoring.TrafficHeatPoints(ds.Segments) }),
		Congestion: b.heat(domain.LayerCongestion, func() []domain.HeatPoint { return scoring.CongestionHeatPoints(ds.Congestion) }),
		Need:       b.Need(ds, params),
	}

	b.metrics.LayerPoints.WithLabelValues(string(domain.LayerEV)).Set(float64(len(snap.EV.Points)))
	b.metrics.LayerPoints.WithLabelValues(string(domain.LayerTraffic)).Set(float64(len(snap.Traffic.Points)))
	b.metrics.LayerPoints.WithLabelValues(string(domain.LayerCongestion)).Set(float64(len(snap.Congestion.Points)))
	b.metrics.LayerPoints.WithLabelValues(string(domain.LayerNeed)).Set(float64(len(snap.Need.Points)))
	return snap
}

// Stations computes the EV layer, keeping only stations of at least minPowerKW
// when it is positive.
func (b *LayerBuilder) Stations(stations []domain.StationRecord, minPowerKW float64) domain.HeatLayer {
	return b.heat(domain.LayerEV, func() []domain.HeatPoint {
		return scoring.StationHeatPoints(scoring.FilterStationsByPower(stations, minPowerKW))
	})
}

// Need computes the charging-need layer for params. Invalid params fall back
// to their defaults.
func (b *LayerBuilder) Need(ds domain.Datasets, params domain.NeedParams) domain.NeedLayer {
	start := time.Now()
	params = params.WithDefaults()
	points := scoring.NewNeedScorer(params, b.workers).Score(ds.Segments, ds.Stations)
	b.observe(domain.LayerNeed, start)
	return domain.NewNeedLayer(params, points)
}

func (b *LayerBuilder) heat(kind domain.LayerKind, compute func() []domain.HeatPoint) domain.HeatLayer {
	start := time.Now()
	points := compute()
	b.observe(kind, start)
	return domain.NewHeatLayer(kind, points)
}

func (b *LayerBuilder) observe(kind domain.LayerKind, start time.Time) {
	b.metrics.LayerBuilds.WithLabelValues(string(kind)).Inc()
	b.metrics.LayerBuildDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}
