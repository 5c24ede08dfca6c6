package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/charging-need-service/internal/cache"
	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/observability"
	"github.com/couchcryptid/charging-need-service/internal/scoring"
)

var (
	// ErrNotReady is returned by layer queries before the first snapshot exists.
	ErrNotReady = errors.New("no snapshot built yet")
	// ErrUnknownLayer is returned for layer names the service does not serve.
	ErrUnknownLayer = errors.New("unknown layer")
)

// DatasetSource loads the raw inputs of one build.
type DatasetSource interface {
	Load(ctx context.Context) (domain.Datasets, []domain.DatasetReport, error)
}

// LayerPublisher writes the layers of a snapshot to a downstream sink.
type LayerPublisher interface {
	PublishLayers(ctx context.Context, snap *domain.Snapshot) error
}

// Options tunes layer computation.
type Options struct {
	Need      domain.NeedParams
	Workers   int
	CacheSize int
}

type needKey struct {
	version uint64
	params  domain.NeedParams
}

// Pipeline loads datasets, builds layer snapshots, and publishes them. The
// current snapshot is swapped atomically so queries never see a partial build.
type Pipeline struct {
	source    DatasetSource
	publisher LayerPublisher
	builder   *LayerBuilder
	logger    *slog.Logger
	metrics   *observability.Metrics
	need      domain.NeedParams

	snapshot  atomic.Pointer[domain.Snapshot]
	version   atomic.Uint64
	buildMu   sync.Mutex
	needCache *cache.LRU[needKey, domain.NeedLayer]
	trigger   chan struct{}
}

// New creates a Pipeline. publisher may be nil to skip publishing.
func New(source DatasetSource, publisher LayerPublisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		source:    source,
		publisher: publisher,
		builder:   NewLayerBuilder(opts.Workers, metrics),
		logger:    logger,
		metrics:   metrics,
		need:      opts.Need.WithDefaults(),
		needCache: cache.New[needKey, domain.NeedLayer](opts.CacheSize),
		trigger:   make(chan struct{}, 1),
	}
}

// CheckReadiness returns nil once a snapshot has been built.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.snapshot.Load() == nil {
		return ErrNotReady
	}
	return nil
}

// Ready reports whether a snapshot has been built.
func (p *Pipeline) Ready() bool {
	return p.snapshot.Load() != nil
}

// NeedDefaults returns the configured need parameters.
func (p *Pipeline) NeedDefaults() domain.NeedParams {
	return p.need
}

// Snapshot returns the current snapshot.
func (p *Pipeline) Snapshot() (*domain.Snapshot, error) {
	snap := p.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap, nil
}

// Trigger requests a rebuild from Run. Requests made while one is pending are
// coalesced.
func (p *Pipeline) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run builds the first snapshot, publishes it, and then rebuilds on every
// Trigger until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	defer p.metrics.PipelineReady.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := initialBackoff

	for {
		snap, err := p.Rebuild(ctx)
		switch {
		case ctx.Err() != nil:
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case err != nil && !p.Ready():
			p.logger.Error("initial build failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		case err != nil:
			p.logger.Error("rebuild failed, keeping previous snapshot", "error", err)
		default:
			backoff = initialBackoff
			p.publish(ctx, snap)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-p.trigger:
			p.logger.Info("rebuild requested")
		}
	}
}

// Rebuild loads the datasets, computes a new snapshot, and swaps it in.
// Concurrent calls are serialized.
func (p *Pipeline) Rebuild(ctx context.Context) (*domain.Snapshot, error) {
	p.buildMu.Lock()
	defer p.buildMu.Unlock()

	start := time.Now()
	ds, reports, err := p.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}
	for _, r := range reports {
		p.metrics.DatasetRecords.WithLabelValues(r.Dataset, "kept").Add(float64(r.Kept))
		p.metrics.DatasetRecords.WithLabelValues(r.Dataset, "dropped").Add(float64(r.Dropped))
	}

	snap := p.builder.Build(ds, p.need, p.version.Add(1))
	p.snapshot.Store(snap)
	p.needCache.Purge()
	p.metrics.PipelineReady.Set(1)

	p.logger.Info("snapshot built",
		"version", snap.Version,
		"stations", len(ds.Stations),
		"segments", len(ds.Segments),
		"congestion_tiles", len(ds.Congestion),
		"need_points", len(snap.Need.Points),
		"duration", time.Since(start),
	)
	return snap, nil
}

// HeatLayer returns one of the plain heatmap layers. A positive minPowerKW
// recomputes the EV layer from stations of at least that power.
func (p *Pipeline) HeatLayer(kind domain.LayerKind, minPowerKW float64) (domain.HeatLayer, error) {
	snap, err := p.Snapshot()
	if err != nil {
		return domain.HeatLayer{}, err
	}

	switch kind {
	case domain.LayerEV:
		if minPowerKW > 0 {
			return p.builder.Stations(snap.Datasets.Stations, minPowerKW), nil
		}
		return snap.EV, nil
	case domain.LayerTraffic:
		return snap.Traffic, nil
	case domain.LayerCongestion:
		return snap.Congestion, nil
	default:
		return domain.HeatLayer{}, fmt.Errorf("%w: %q", ErrUnknownLayer, kind)
	}
}

// NeedLayer returns the charging-need layer for params, keeping points with
// need >= minNeed. Layers for non-default params are memoized per snapshot.
func (p *Pipeline) NeedLayer(params domain.NeedParams, minNeed float64) (domain.NeedLayer, error) {
	snap, err := p.Snapshot()
	if err != nil {
		return domain.NeedLayer{}, err
	}

	params = params.WithDefaults()
	layer := snap.Need
	if params != snap.Need.Params {
		key := needKey{version: snap.Version, params: params}
		if cached, ok := p.needCache.Get(key); ok {
			p.metrics.LayerCache.WithLabelValues("hit").Inc()
			layer = cached
		} else {
			p.metrics.LayerCache.WithLabelValues("miss").Inc()
			layer = p.builder.Need(snap.Datasets, params)
			p.needCache.Put(key, layer)
		}
	}

	layer.Points = scoring.FilterByNeed(layer.Points, minNeed)
	return layer, nil
}

// publish retries with backoff until the sink accepts the snapshot, the
// context ends, or a newer build is requested.
func (p *Pipeline) publish(ctx context.Context, snap *domain.Snapshot) {
	if p.publisher == nil {
		return
	}

	backoff := initialBackoff
	for {
		err := p.publisher.PublishLayers(ctx, snap)
		if err == nil {
			n := pointCount(snap)
			p.metrics.PointsPublished.Add(float64(n))
			p.logger.Info("layers published", "version", snap.Version, "points", n)
			return
		}
		if ctx.Err() != nil {
			return
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish layers failed", "error", err, "version", snap.Version, "retry_in", backoff)
		if len(p.trigger) > 0 {
			p.logger.Warn("abandoning publish of stale snapshot", "version", snap.Version)
			return
		}
		if !sleepWithContext(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func pointCount(snap *domain.Snapshot) int {
	return len(snap.EV.Points) + len(snap.Traffic.Points) + len(snap.Congestion.Points) + len(snap.Need.Points)
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
