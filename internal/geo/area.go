package geo

import (
	"math"

	"field-visit-service/internal/domain"
)

// Meters per degree of latitude, and per degree of longitude at the equator.
const metersPerDegree = 111320.0

// RingAreaM2 returns the approximate planimetric area of a ring in square
// meters: a shoelace sum over the raw degree coordinates, scaled by the
// meter-per-degree factors at the ring's mean latitude.
func RingAreaM2(ring []domain.Coordinates) float64 {
	if len(ring) < 3 {
		return 0
	}

	var sum, latSum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].Lon*ring[j].Lat - ring[j].Lon*ring[i].Lat
		latSum += ring[i].Lat
	}

	meanLat := latSum / float64(len(ring))
	mLon := metersPerDegree * math.Cos(meanLat*math.Pi/180)

	return math.Abs(sum) / 2 * mLon * metersPerDegree
}

// SquareMetersToHectares converts an area to hectares.
func SquareMetersToHectares(m2 float64) float64 { return m2 / 10000 }
