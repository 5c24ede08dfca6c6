package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "charging_need"

// Metrics holds the Prometheus counters, histograms, and gauges for dataset
// loading, layer builds, and publishing.
type Metrics struct {
	DatasetRecords *prometheus.CounterVec // labels: dataset, outcome={kept,dropped}

	LayerBuilds        *prometheus.CounterVec   // labels: layer
	LayerBuildDuration *prometheus.HistogramVec // labels: layer
	LayerPoints        *prometheus.GaugeVec     // labels: layer

	LayerCache *prometheus.CounterVec // labels: result={hit,miss}

	PointsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
	PipelineReady   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetRecords,
		m.LayerBuilds,
		m.LayerBuildDuration,
		m.LayerPoints,
		m.LayerCache,
		m.PointsPublished,
		m.PublishErrors,
		m.PipelineReady,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_records_total",
			Help:      "Decoded dataset records by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		LayerBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_builds_total",
			Help:      "Computed layers by layer name.",
		}, []string{"layer"}),
		LayerBuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layer_build_duration_seconds",
			Help:      "Time spent computing one layer.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"layer"}),
		LayerPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layer_points",
			Help:      "Points in the most recently built default layer.",
		}, []string{"layer"}),
		LayerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_cache_total",
			Help:      "Need layer cache lookups by result.",
		}, []string{"result"}),
		PointsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_published_total",
			Help:      "Layer points written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish layers.",
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      "1 once a snapshot has been built, 0 before.",
		}),
	}
}
