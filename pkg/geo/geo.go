// Package geo holds the coordinate helpers: the privacy filter applied to
// every published location and the distance maths used by "near" listings.
package geo

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// MaxOffset is the largest perturbation applied to either axis, in degrees
// (about 50m at mid latitudes).
const MaxOffset = 0.0005

const earthRadiusKm = 6371.0

// Fuzzer perturbs true coordinates into public ones. It is not meant to be
// cryptographically unpredictable.
type Fuzzer struct {
	uniform func() float64
}

func NewFuzzer() *Fuzzer {
	return &Fuzzer{uniform: rand.Float64}
}

// NewSeededFuzzer is deterministic for a given seed. Unlike NewFuzzer it is
// not safe for concurrent use.
func NewSeededFuzzer(seed uint64) *Fuzzer {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Fuzzer{uniform: r.Float64}
}

// Fuzz returns the public coordinate for a true one. Each axis moves by an
// independent uniform offset in [-MaxOffset, +MaxOffset]; results are clamped
// to the valid range, which can only shrink the offset.
func (f *Fuzzer) Fuzz(lat, lng float64) (float64, float64) {
	pubLat := lat + f.offset()
	pubLng := lng + f.offset()
	return clamp(pubLat, -90, 90), clamp(pubLng, -180, 180)
}

func (f *Fuzzer) offset() float64 {
	return (f.uniform()*2 - 1) * MaxOffset
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ValidCoordinate reports whether lat/lng lie on the globe.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Distance is the haversine great-circle distance in kilometres.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// FormatDistance renders km as "500m" below one kilometre and "1.2km" above.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
