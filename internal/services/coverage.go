package services

import (
	"errors"
	"fmt"

	"field-visit-service/internal/domain"
	"field-visit-service/internal/geo"
)

// DefaultWorkWidthM is the implement's total working width in meters.
const DefaultWorkWidthM = 6.0

// ErrInsufficientPath means a visit's path has too few pings for coverage to
// be defined. Callers must report "no data", not zero coverage.
var ErrInsufficientPath = errors.New("coverage needs at least 2 pings")

// AnalyzeCoverage computes how much of a block's area the equipment swept
// during one visit, and which sub-areas were missed.
//
// The path is buffered to half the implement width on each side, then
// intersected with the block. Boolean-geometry failures never surface:
// a failed intersection degrades to the buffered-path area, and a failed
// difference sets MissedAreasUnknown instead of a missed-area list. Only
// malformed block rings and too-short paths are reported as errors.
func AnalyzeCoverage(block *domain.Block, path []domain.Ping, workWidthM float64) (*domain.CoverageStats, error) {
	if err := domain.ValidateRing(block.Ring); err != nil {
		return nil, fmt.Errorf("analyze coverage: block %s: %w", block.ID, err)
	}
	if len(path) < 2 {
		return nil, ErrInsufficientPath
	}
	if workWidthM <= 0 {
		workWidthM = DefaultWorkWidthM
	}

	stats := &domain.CoverageStats{}
	speedStats(path, stats)

	line := make([]domain.Coordinates, len(path))
	for i, p := range path {
		line[i] = p.Position
	}
	for i := 1; i < len(line); i++ {
		stats.TotalDistanceM += domain.HaversineMeters(line[i-1], line[i])
	}

	buffered, err := geo.BufferLine(line, workWidthM/2)
	if err != nil {
		// All pings at one spot: the path sweeps no measurable area.
		if errors.Is(err, geo.ErrShortLine) {
			return stats, nil
		}
		return nil, fmt.Errorf("analyze coverage: buffer path: %w", err)
	}

	blockAreaM2 := geo.RingAreaM2(block.Ring)
	if blockAreaM2 <= 0 {
		return nil, fmt.Errorf("analyze coverage: block %s: %w", block.ID, domain.ErrBadRing)
	}

	covered, err := geo.Intersect(block.Ring, buffered)

	var coveredAreaM2 float64
	switch {
	case err != nil:
		// Degenerate geometry: approximate with the raw buffer area and
		// skip missed-area decomposition.
		coveredAreaM2 = geo.RingAreaM2(buffered)
		stats.MissedAreasUnknown = true
	case covered == nil:
		// Path never overlapped the block: everything was missed.
		coveredAreaM2 = 0
		stats.MissedAreas = [][]domain.Coordinates{block.Ring}
	default:
		for _, ring := range covered {
			coveredAreaM2 += geo.RingAreaM2(ring)
		}
		// block minus covered equals block minus the raw buffer, and the
		// latter avoids subtracting a polygon that shares the block's own
		// boundary (degenerate for the clipper). A path worked entirely
		// inside the block still fails here, since the leftover region is
		// a ring with a hole; flag that instead of reporting an empty list.
		if missed, err := geo.Difference(block.Ring, buffered); err == nil {
			stats.MissedAreas = missed
		} else {
			stats.MissedAreasUnknown = true
		}
	}

	stats.CoveredAreaHa = geo.SquareMetersToHectares(coveredAreaM2)

	// The buffer can overshoot past the block edge; never report >100%.
	pct := coveredAreaM2 / blockAreaM2 * 100
	if pct > 100 {
		pct = 100
	}
	stats.CoveragePercent = pct

	return stats, nil
}

// speedStats fills average and max speed from the pings that report a
// positive speed; pings without one are ignored.
func speedStats(path []domain.Ping, stats *domain.CoverageStats) {
	var sum float64
	var n int
	for _, p := range path {
		if p.SpeedKmh == nil || *p.SpeedKmh <= 0 {
			continue
		}
		sum += *p.SpeedKmh
		n++
		if *p.SpeedKmh > stats.MaxSpeedKmh {
			stats.MaxSpeedKmh = *p.SpeedKmh
		}
	}
	if n > 0 {
		stats.AverageSpeedKmh = sum / float64(n)
	}
}
