package domain

// Spatial coverage quality for one visit against one block. Computed on
// demand and never persisted.
//
// CoveredAreaHa may overestimate near block edges when the boolean
// intersection fails and the buffered-path approximation is used instead;
// CoveragePercent stays clamped to [0,100] regardless.
type CoverageStats struct {
	AverageSpeedKmh float64
	MaxSpeedKmh     float64
	CoveragePercent float64
	CoveredAreaHa   float64
	TotalDistanceM  float64
	MissedAreas     [][]Coordinates

	// MissedAreasUnknown marks results where the missed-area decomposition
	// could not be computed (the uncovered region needs a ring with a hole,
	// which the kernel cannot represent). An empty MissedAreas with this
	// flag unset genuinely means nothing was missed.
	MissedAreasUnknown bool
}
