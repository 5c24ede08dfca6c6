package scoring

import (
	"math"
	"testing"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parisSegment() domain.TrafficSegment {
	seg := segment("seg-1", 48.85, 2.35, 20000)
	seg.RatioPL = ptr(10)
	seg.LengthM = ptr(1000)
	return seg
}

func TestDemand(t *testing.T) {
	params := domain.DefaultNeedParams()

	t.Run("defaults", func(t *testing.T) {
		// 1 km default length, no heavy vehicles.
		assert.InDelta(t, 20000.0, Demand(segment("", 48.85, 2.35, 20000), params), 1e-9)
	})

	t.Run("heavy share and length", func(t *testing.T) {
		seg := segment("", 48.85, 2.35, 20000)
		seg.RatioPL = ptr(10)
		seg.LengthM = ptr(4000)
		want := 20000 * math.Pow(4, 0.75) * (1 + 1.25*0.1)
		assert.InDelta(t, want, Demand(seg, params), 1e-9)
	})

	t.Run("length floored at 100 m", func(t *testing.T) {
		seg := segment("", 48.85, 2.35, 1000)
		seg.LengthM = ptr(10)
		assert.InDelta(t, 1000*math.Pow(0.1, 0.75), Demand(seg, params), 1e-9)
	})

	t.Run("negative heavy share ignored", func(t *testing.T) {
		seg := segment("", 48.85, 2.35, 1000)
		seg.RatioPL = ptr(-40)
		assert.InDelta(t, 1000.0, Demand(seg, params), 1e-9)
	})
}

func TestComposeNeed(t *testing.T) {
	params := domain.DefaultNeedParams()
	assert.Equal(t, 0.0, ComposeNeed(0, 0, params))
	assert.Equal(t, 1.0, ComposeNeed(1, 0, params))
	assert.Equal(t, 0.0, ComposeNeed(1, 1, params))
	assert.InDelta(t, math.Pow(0.5, 1.2)*math.Pow(0.5, 1.8), ComposeNeed(0.5, 0.5, params), 1e-12)
}

func TestScore_EmptySegments(t *testing.T) {
	s := NewNeedScorer(domain.DefaultNeedParams(), 1)

	got := s.Score(nil, []domain.StationRecord{station(48.85, 2.35, 2)})
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = s.Score([]domain.TrafficSegment{segment("", 48.85, 2.35, 0), segment("", math.NaN(), 2.35, 10)}, nil)
	assert.Empty(t, got)
}

func TestScore_EmptyStationsMeansMaximalScarcity(t *testing.T) {
	segments, _ := randomBatch(3, 120, 0)
	params := domain.DefaultNeedParams()

	points := NewNeedScorer(params, 4).Score(segments, nil)
	require.Len(t, points, len(segments))
	for _, p := range points {
		assert.Equal(t, 0.0, p.Supply)
		assert.InDelta(t, math.Pow(p.Demand, params.Gamma), p.Need, 1e-12)
	}
}

func TestScore_NeedAndWeightBounded(t *testing.T) {
	paramSets := []domain.NeedParams{
		domain.DefaultNeedParams(),
		{RadiusMeters: 500, Alpha: 0, Beta: 0, Gamma: 0, Delta: 0},
		{RadiusMeters: 25000, Alpha: 2, Beta: 5, Gamma: 4, Delta: 6},
		{RadiusMeters: 1, Alpha: 0.1, Beta: 0.1, Gamma: 0.1, Delta: 0.1},
	}

	for seed := uint64(1); seed <= 5; seed++ {
		segments, stations := randomBatch(seed, 150, int(seed)*40)
		for _, params := range paramSets {
			for _, p := range NewNeedScorer(params, 2).Score(segments, stations) {
				assert.GreaterOrEqual(t, p.Need, 0.0)
				assert.LessOrEqual(t, p.Need, 1.0)
				assert.GreaterOrEqual(t, p.Weight, 0.35)
				assert.LessOrEqual(t, p.Weight, 1.2+1e-12)
				assert.InDelta(t, 0.35+0.85*p.Need, p.Weight, 1e-12)
			}
		}
	}
}

func TestScore_Idempotent(t *testing.T) {
	segments, stations := randomBatch(42, 250, 180)
	s := NewNeedScorer(domain.DefaultNeedParams(), 4)

	first := s.Score(segments, stations)
	second := s.Score(segments, stations)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("scores differ between runs (-first +second):\n%s", diff)
	}

	sequential := NewNeedScorer(domain.DefaultNeedParams(), 1).Score(segments, stations)
	if diff := cmp.Diff(first, sequential); diff != "" {
		t.Fatalf("parallel and sequential scores differ (-parallel +sequential):\n%s", diff)
	}
}

func TestScore_NearbySupplyLowersNeed(t *testing.T) {
	s := NewNeedScorer(domain.DefaultNeedParams(), 1)
	segments := []domain.TrafficSegment{parisSegment()}

	without := s.Score(segments, nil)
	with := s.Score(segments, []domain.StationRecord{station(48.8501, 2.3501, 10)})

	require.Len(t, without, 1)
	require.Len(t, with, 1)
	assert.Greater(t, without[0].Need, with[0].Need)
	assert.Greater(t, without[0].Need, 0.0)
}

func TestScore_MonotonicInDemand(t *testing.T) {
	low := segment("low", 48.85, 2.35, 2000)
	high := segment("high", 48.85, 2.35, 20000)
	stations := []domain.StationRecord{station(48.86, 2.36, 3), station(48.80, 2.30, 6)}

	points := NewNeedScorer(domain.DefaultNeedParams(), 1).Score([]domain.TrafficSegment{low, high}, stations)
	require.Len(t, points, 2)
	assert.Equal(t, "low", points[0].SegmentID)
	assert.Equal(t, "high", points[1].SegmentID)
	assert.GreaterOrEqual(t, points[1].Need, points[0].Need)
}

func TestScore_SkipsUnusableSegmentsAndKeepsOrder(t *testing.T) {
	segments := []domain.TrafficSegment{
		segment("a", 48.85, 2.35, 1000),
		segment("bad-tmja", 48.85, 2.35, -1),
		segment("b", 48.95, 2.45, 5000),
		segment("bad-lat", math.Inf(-1), 2.35, 1000),
	}
	points := NewNeedScorer(domain.DefaultNeedParams(), 1).Score(segments, []domain.StationRecord{station(48.85, 2.35, 2)})

	require.Len(t, points, 2)
	assert.Equal(t, "a", points[0].SegmentID)
	assert.Equal(t, "b", points[1].SegmentID)
}

func TestScore_InvalidParamsFallBackToDefaults(t *testing.T) {
	segments, stations := randomBatch(9, 60, 60)
	bad := domain.NeedParams{RadiusMeters: math.NaN(), Alpha: -1, Beta: math.Inf(1), Gamma: -3, Delta: math.NaN()}

	got := NewNeedScorer(bad, 1).Score(segments, stations)
	want := NewNeedScorer(domain.DefaultNeedParams(), 1).Score(segments, stations)
	assert.Equal(t, want, got)
}

func TestFilterByNeed(t *testing.T) {
	points := []domain.ScoredPoint{{Need: 0.1}, {Need: 0.4}, {Need: 0.9}}

	assert.Equal(t, points, FilterByNeed(points, 0))
	assert.Equal(t, []domain.ScoredPoint{{Need: 0.4}, {Need: 0.9}}, FilterByNeed(points, 0.4))
	assert.Empty(t, FilterByNeed(points, 0.95))
}
