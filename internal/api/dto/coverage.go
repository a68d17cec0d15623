package dto

type CoverageRequest struct {
	VisitID         string  `json:"visit_id"`
	WorkWidthMeters float64 `json:"work_width_meters"`
}

// Missed areas are rings of [lon, lat] pairs, one ring per disjoint part.
// When missed_areas_unknown is true the decomposition could not be
// computed and missed_areas carries no information.
type CoverageResponse struct {
	AverageSpeedKmh    float64       `json:"average_speed_kmh"`
	MaxSpeedKmh        float64       `json:"max_speed_kmh"`
	CoveragePercent    float64       `json:"coverage_percentage"`
	CoveredAreaHa      float64       `json:"covered_area_hectares"`
	TotalDistanceM     float64       `json:"total_distance_meters"`
	MissedAreas        [][][]float64 `json:"missed_areas"`
	MissedAreasUnknown bool          `json:"missed_areas_unknown"`
}
