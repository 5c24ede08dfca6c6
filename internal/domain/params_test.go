package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestDefaultNeedParams(t *testing.T) {
	p := DefaultNeedParams()
	assert.Equal(t, 6000.0, p.RadiusMeters)
	assert.Equal(t, 0.75, p.Alpha)
	assert.Equal(t, 1.25, p.Beta)
	assert.Equal(t, 1.2, p.Gamma)
	assert.Equal(t, 1.8, p.Delta)
}

func TestNeedParams_WithDefaults(t *testing.T) {
	t.Run("valid values kept", func(t *testing.T) {
		p := NeedParams{RadiusMeters: 2500, Alpha: 0, Beta: 2, Gamma: 1, Delta: 0.5}
		assert.Equal(t, p, p.WithDefaults())
	})

	t.Run("invalid values replaced", func(t *testing.T) {
		p := NeedParams{RadiusMeters: -1, Alpha: math.NaN(), Beta: -2, Gamma: math.Inf(1), Delta: -0.1}
		assert.Equal(t, DefaultNeedParams(), p.WithDefaults())
	})

	t.Run("zero radius replaced", func(t *testing.T) {
		p := NeedParams{Gamma: 1}
		got := p.WithDefaults()
		assert.Equal(t, DefaultRadiusMeters, got.RadiusMeters)
		assert.Equal(t, 1.0, got.Gamma)
	})
}

func TestTrafficSegment_Usable(t *testing.T) {
	assert.True(t, TrafficSegment{Lat: 48.8, Lng: 2.3, TMJA: 100}.Usable())
	assert.False(t, TrafficSegment{Lat: 48.8, Lng: 2.3, TMJA: 0}.Usable())
	assert.False(t, TrafficSegment{Lat: math.NaN(), Lng: 2.3, TMJA: 100}.Usable())
	assert.False(t, TrafficSegment{Lat: 48.8, Lng: 2.3, TMJA: math.Inf(1)}.Usable())
}

func TestNewLayerUsesClock(t *testing.T) {
	at := time.Date(2025, 11, 1, 22, 55, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })

	heat := NewHeatLayer(LayerEV, nil)
	assert.Equal(t, at, heat.GeneratedAt)
	assert.Equal(t, LayerEV, heat.Kind)

	need := NewNeedLayer(DefaultNeedParams(), nil)
	assert.Equal(t, at, need.GeneratedAt)
	assert.Equal(t, LayerNeed, need.Kind)
}
