package geo

import (
	"errors"
	"fmt"
	"math"

	"field-visit-service/internal/domain"
)

var ErrShortLine = errors.New("line needs at least 2 distinct points")

// BufferLine expands an ordered path into the closed ring swept by an
// implement of total width 2*halfWidthM: the path offset by halfWidthM to
// one side, then back along the other side, with flat end caps.
//
// Sharp turns can make the ring self-intersect; downstream boolean
// operations treat that as a degenerate input, not this function's error.
func BufferLine(line []domain.Coordinates, halfWidthM float64) ([]domain.Coordinates, error) {
	if halfWidthM <= 0 {
		return nil, fmt.Errorf("buffer line: half width must be positive, got %v", halfWidthM)
	}

	pts, meanLat := dropRepeats(line)
	if len(pts) < 2 {
		return nil, ErrShortLine
	}

	// Work in a local equirectangular projection (meters) around the path.
	mLon := metersPerDegree * math.Cos(meanLat*math.Pi/180)
	proj := make([][2]float64, len(pts))
	for i, p := range pts {
		proj[i] = [2]float64{p.Lon * mLon, p.Lat * metersPerDegree}
	}

	left := make([][2]float64, len(proj))
	right := make([][2]float64, len(proj))
	for i := range proj {
		nx, ny := vertexNormal(proj, i)
		left[i] = [2]float64{proj[i][0] + nx*halfWidthM, proj[i][1] + ny*halfWidthM}
		right[i] = [2]float64{proj[i][0] - nx*halfWidthM, proj[i][1] - ny*halfWidthM}
	}

	ring := make([]domain.Coordinates, 0, 2*len(proj)+1)
	for _, q := range left {
		ring = append(ring, domain.Coordinates{Lon: q[0] / mLon, Lat: q[1] / metersPerDegree})
	}
	for i := len(right) - 1; i >= 0; i-- {
		ring = append(ring, domain.Coordinates{Lon: right[i][0] / mLon, Lat: right[i][1] / metersPerDegree})
	}
	ring = append(ring, ring[0])

	return ring, nil
}

// dropRepeats removes consecutive duplicate points and returns the mean
// latitude of what remains.
func dropRepeats(line []domain.Coordinates) ([]domain.Coordinates, float64) {
	pts := make([]domain.Coordinates, 0, len(line))
	var latSum float64
	for _, p := range line {
		if len(pts) > 0 && p.Lon == pts[len(pts)-1].Lon && p.Lat == pts[len(pts)-1].Lat {
			continue
		}
		pts = append(pts, p)
		latSum += p.Lat
	}
	if len(pts) == 0 {
		return pts, 0
	}
	return pts, latSum / float64(len(pts))
}

// vertexNormal is the unit left-hand normal at vertex i: the segment normal
// at the ends, the normalized average of the two adjacent segment normals in
// between (a cheap miter).
func vertexNormal(proj [][2]float64, i int) (float64, float64) {
	segNormal := func(a, b [2]float64) (float64, float64) {
		dx, dy := b[0]-a[0], b[1]-a[1]
		l := math.Hypot(dx, dy)
		return -dy / l, dx / l
	}

	var nx, ny float64
	switch {
	case i == 0:
		nx, ny = segNormal(proj[0], proj[1])
	case i == len(proj)-1:
		nx, ny = segNormal(proj[i-1], proj[i])
	default:
		ax, ay := segNormal(proj[i-1], proj[i])
		bx, by := segNormal(proj[i], proj[i+1])
		nx, ny = ax+bx, ay+by
		l := math.Hypot(nx, ny)
		if l < 1e-9 {
			// 180-degree reversal: fall back to the incoming segment's normal.
			return ax, ay
		}
		nx, ny = nx/l, ny/l
	}
	return nx, ny
}
