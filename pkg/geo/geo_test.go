package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzz_StaysWithinOffset(t *testing.T) {
	f := NewFuzzer()
	points := [][2]float64{
		{51.5074, -0.1278},
		{-33.8688, 151.2093},
		{0, 0},
		{89.9999, 179.9999},
		{-90, -180},
	}

	for _, p := range points {
		for i := 0; i < 200; i++ {
			lat, lng := f.Fuzz(p[0], p[1])
			assert.LessOrEqual(t, math.Abs(lat-p[0]), MaxOffset+1e-12)
			assert.LessOrEqual(t, math.Abs(lng-p[1]), MaxOffset+1e-12)
			assert.True(t, ValidCoordinate(lat, lng))
		}
	}
}

func TestFuzz_UsuallyMoves(t *testing.T) {
	f := NewFuzzer()
	moved := 0
	for i := 0; i < 50; i++ {
		lat, lng := f.Fuzz(51.5074, -0.1278)
		if lat != 51.5074 || lng != -0.1278 {
			moved++
		}
	}
	// identical output is possible but vanishingly rare
	assert.Greater(t, moved, 45)
}

func TestSeededFuzzer_Deterministic(t *testing.T) {
	a, b := NewSeededFuzzer(42), NewSeededFuzzer(42)
	for i := 0; i < 10; i++ {
		latA, lngA := a.Fuzz(10, 20)
		latB, lngB := b.Fuzz(10, 20)
		assert.Equal(t, latA, latB)
		assert.Equal(t, lngA, lngB)
	}
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(51.5, -0.12))
	assert.False(t, ValidCoordinate(91, 0))
	assert.False(t, ValidCoordinate(0, -181))
	assert.False(t, ValidCoordinate(math.NaN(), 0))
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0.0, Distance(51.5074, -0.1278, 51.5074, -0.1278))

	londonParis := Distance(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344, londonParis, 6)

	sydneyLondon := Distance(-33.8688, 151.2093, 51.5074, -0.1278)
	assert.InDelta(t, 17000, sydneyLondon, 500)

	equatorDegree := Distance(0, 0, 0, 1)
	assert.InDelta(t, 111.2, equatorDegree, 1)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "500m", FormatDistance(0.5))
	assert.Equal(t, "50m", FormatDistance(0.05))
	assert.Equal(t, "999m", FormatDistance(0.999))
	assert.Equal(t, "1.0km", FormatDistance(1))
	assert.Equal(t, "12.3km", FormatDistance(12.34))
}
