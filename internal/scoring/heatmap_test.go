package scoring

import (
	"math"
	"testing"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrafficHeatPoints(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, TrafficHeatPoints(nil))
		assert.Empty(t, TrafficHeatPoints([]domain.TrafficSegment{segment("", 48.8, 2.3, 0)}))
	})

	t.Run("single segment uses lowest bracket midpoint", func(t *testing.T) {
		points := TrafficHeatPoints([]domain.TrafficSegment{segment("", 48.8, 2.3, 20000)})
		require.Len(t, points, 1)
		assert.InDelta(t, 0.115, points[0].Weight, 1e-12)
	})

	t.Run("top outlier exceeds one", func(t *testing.T) {
		var segments []domain.TrafficSegment
		for i := 1; i <= 101; i++ {
			segments = append(segments, segment("", 48.8, 2.3, float64(i*100)))
		}
		segments = append(segments, segment("", math.NaN(), 2.3, 5))

		points := TrafficHeatPoints(segments)
		require.Len(t, points, 101)
		assert.InDelta(t, 0.05, points[0].Weight, 1e-12)
		assert.InDelta(t, 1.15, points[100].Weight, 1e-12)
		for i := 1; i < len(points); i++ {
			assert.GreaterOrEqual(t, points[i].Weight, points[i-1].Weight)
		}
	})
}

func TestStationWeight(t *testing.T) {
	assert.InDelta(t, 0.35, StationWeight(domain.StationRecord{}), 1e-12)
	assert.InDelta(t, 0.35, StationWeight(station(0, 0, 1)), 1e-12)
	assert.InDelta(t, 0.5, StationWeight(station(0, 0, 3)), 1e-12)
	assert.InDelta(t, 1.0, StationWeight(station(0, 0, 6)), 1e-12)
	assert.InDelta(t, 1.2, StationWeight(station(0, 0, 40)), 1e-12)
}

func TestStationHeatPoints(t *testing.T) {
	points := StationHeatPoints([]domain.StationRecord{
		station(48.85, 2.35, 6),
		station(math.NaN(), 2.35, 6),
	})
	require.Len(t, points, 1)
	assert.Equal(t, domain.HeatPoint{Lat: 48.85, Lng: 2.35, Weight: 1}, points[0])
}

func TestCongestionWeight(t *testing.T) {
	assert.Equal(t, 0.5, CongestionWeight(math.NaN()))
	assert.Equal(t, 0.25, CongestionWeight(0))
	assert.InDelta(t, 0.5, CongestionWeight(20), 1e-12)
	assert.Equal(t, 1.1, CongestionWeight(400))
}

func TestCongestionHeatPoints(t *testing.T) {
	points := CongestionHeatPoints([]domain.CongestionTile{
		{Lat: 48.85, Lng: 2.35, Intensity: 20},
		{Lat: 48.85, Lng: math.Inf(1), Intensity: 20},
	})
	require.Len(t, points, 1)
	assert.InDelta(t, 0.5, points[0].Weight, 1e-12)
}

func TestFilterStationsByPower(t *testing.T) {
	fast := station(48.85, 2.35, 2)
	fast.EstimatedPowerKW = ptr(150)
	slow := station(48.85, 2.35, 2)
	slow.EstimatedPowerKW = ptr(22)
	unknown := station(48.85, 2.35, 2)
	all := []domain.StationRecord{fast, slow, unknown}

	assert.Equal(t, all, FilterStationsByPower(all, 0))
	assert.Equal(t, []domain.StationRecord{fast, slow}, FilterStationsByPower(all, 22))
	assert.Equal(t, []domain.StationRecord{fast}, FilterStationsByPower(all, 50))
}
