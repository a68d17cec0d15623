// Package geo is the planar geometry kernel behind visit segmentation and
// coverage analysis. It works on lon/lat rings directly; the planar
// approximations hold at field scale (tens of hectares) and are not valid
// near the poles or the antimeridian.
package geo

import "field-visit-service/internal/domain"

// Contains reports whether a point falls inside a polygon's outer ring,
// using an even-odd ray-casting test. Inner rings (holes) are unsupported.
//
// The edge comparison below is load-bearing: it fixes the tie-break for
// points exactly on a boundary, and previously computed visit boundaries
// depend on it. Do not "simplify" it.
func Contains(p domain.Coordinates, ring []domain.Coordinates) bool {
	x, y := p.Lon, p.Lat

	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
