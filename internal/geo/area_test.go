package geo

import (
	"math"
	"testing"

	"field-visit-service/internal/domain"
)

func TestRingAreaM2EquatorSquare(t *testing.T) {
	// 0.001 x 0.001 degrees at the equator is roughly 111.32m x 111.32m.
	ring := []domain.Coordinates{
		{Lon: 0, Lat: 0},
		{Lon: 0.001, Lat: 0},
		{Lon: 0.001, Lat: 0.001},
		{Lon: 0, Lat: 0.001},
		{Lon: 0, Lat: 0},
	}

	want := 111.32 * 111.32
	got := RingAreaM2(ring)
	if math.Abs(got-want)/want > 0.01 {
		t.Fatalf("area = %.1f m2, want about %.1f", got, want)
	}
}

func TestRingAreaM2ShrinksWithLatitude(t *testing.T) {
	square := func(lat float64) []domain.Coordinates {
		return []domain.Coordinates{
			{Lon: 0, Lat: lat},
			{Lon: 0.001, Lat: lat},
			{Lon: 0.001, Lat: lat + 0.001},
			{Lon: 0, Lat: lat + 0.001},
			{Lon: 0, Lat: lat},
		}
	}

	equator := RingAreaM2(square(0))
	north := RingAreaM2(square(60))

	// At 60 degrees north, a degree of longitude is about half as wide.
	ratio := north / equator
	if math.Abs(ratio-0.5) > 0.01 {
		t.Fatalf("area ratio at 60N = %.3f, want about 0.5", ratio)
	}
}

func TestRingAreaM2OrientationIndependent(t *testing.T) {
	cw := []domain.Coordinates{
		{Lon: 0, Lat: 0},
		{Lon: 0, Lat: 0.001},
		{Lon: 0.001, Lat: 0.001},
		{Lon: 0.001, Lat: 0},
		{Lon: 0, Lat: 0},
	}
	ccw := []domain.Coordinates{
		{Lon: 0, Lat: 0},
		{Lon: 0.001, Lat: 0},
		{Lon: 0.001, Lat: 0.001},
		{Lon: 0, Lat: 0.001},
		{Lon: 0, Lat: 0},
	}

	if a, b := RingAreaM2(cw), RingAreaM2(ccw); a != b {
		t.Fatalf("orientation changed area: %v vs %v", a, b)
	}
}

func TestRingAreaM2Degenerate(t *testing.T) {
	if a := RingAreaM2(nil); a != 0 {
		t.Fatalf("empty ring area = %v, want 0", a)
	}
	if a := RingAreaM2([]domain.Coordinates{{Lon: 1, Lat: 1}, {Lon: 2, Lat: 2}}); a != 0 {
		t.Fatalf("two-point ring area = %v, want 0", a)
	}
}
