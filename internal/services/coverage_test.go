package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"field-visit-service/internal/domain"
)

// A roughly 100m x 100m block at the equator.
func smallBlock() *domain.Block {
	return &domain.Block{
		ID:       "block-1",
		TenantID: "tenant-1",
		Name:     "South paddock",
		Ring: []domain.Coordinates{
			{Lon: 0, Lat: 0},
			{Lon: 0.0009, Lat: 0},
			{Lon: 0.0009, Lat: 0.0009},
			{Lon: 0, Lat: 0.0009},
			{Lon: 0, Lat: 0},
		},
	}
}

func pathPing(at time.Time, lon, lat, speed float64) domain.Ping {
	return domain.Ping{
		TractorID: "tr-1",
		At:        at,
		Position:  domain.Coordinates{Lon: lon, Lat: lat},
		SpeedKmh:  &speed,
	}
}

func TestAnalyzeCoverageCrossingPass(t *testing.T) {
	block := smallBlock()

	// One straight pass through the middle, entering and leaving the block.
	path := []domain.Ping{
		pathPing(t0, -0.0005, 0.00045, 8),
		pathPing(t0.Add(1*time.Minute), 0.0004, 0.00045, 12),
		pathPing(t0.Add(2*time.Minute), 0.0014, 0.00045, 10),
	}

	stats, err := AnalyzeCoverage(block, path, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(stats.AverageSpeedKmh-10) > 1e-9 {
		t.Errorf("AverageSpeedKmh = %v, want 10", stats.AverageSpeedKmh)
	}
	if stats.MaxSpeedKmh != 12 {
		t.Errorf("MaxSpeedKmh = %v, want 12", stats.MaxSpeedKmh)
	}

	// The path spans 0.0019 degrees of longitude, about 211 meters.
	if stats.TotalDistanceM < 200 || stats.TotalDistanceM > 225 {
		t.Errorf("TotalDistanceM = %v, want about 211", stats.TotalDistanceM)
	}

	// A 6m band across a 100m block covers about 6% of it.
	if stats.CoveragePercent < 4 || stats.CoveragePercent > 8 {
		t.Errorf("CoveragePercent = %v, want about 6", stats.CoveragePercent)
	}

	// The band splits the block into a missed strip above and below.
	if len(stats.MissedAreas) != 2 {
		t.Fatalf("MissedAreas = %d parts, want 2", len(stats.MissedAreas))
	}
	if stats.MissedAreasUnknown {
		t.Error("MissedAreasUnknown set on a computed decomposition")
	}
}

func TestAnalyzeCoveragePathInsideBlock(t *testing.T) {
	block := smallBlock()

	path := []domain.Ping{
		pathPing(t0, 0.0002, 0.00045, 8),
		pathPing(t0.Add(1*time.Minute), 0.0007, 0.00045, 8),
	}

	stats, err := AnalyzeCoverage(block, path, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.CoveragePercent <= 0 || stats.CoveragePercent >= 100 {
		t.Errorf("CoveragePercent = %v, want inside (0,100)", stats.CoveragePercent)
	}
	if stats.CoveredAreaHa <= 0 {
		t.Errorf("CoveredAreaHa = %v, want positive", stats.CoveredAreaHa)
	}

	// The uncovered region wraps around the band, which a plain ring
	// cannot express; the result must say so rather than claim full
	// coverage with an empty list.
	if len(stats.MissedAreas) != 0 {
		t.Errorf("MissedAreas = %d parts, want none", len(stats.MissedAreas))
	}
	if !stats.MissedAreasUnknown {
		t.Error("MissedAreasUnknown not set for an interior pass")
	}
}

// A buffered path dwarfing the block must clamp at 100, never beyond.
func TestAnalyzeCoveragePercentageClamped(t *testing.T) {
	tiny := &domain.Block{
		ID:       "tiny",
		TenantID: "tenant-1",
		Ring: []domain.Coordinates{
			{Lon: 0.0004, Lat: 0.00042},
			{Lon: 0.0005, Lat: 0.00042},
			{Lon: 0.0005, Lat: 0.00048},
			{Lon: 0.0004, Lat: 0.00048},
			{Lon: 0.0004, Lat: 0.00042},
		},
	}

	path := []domain.Ping{
		pathPing(t0, -0.001, 0.00045, 5),
		pathPing(t0.Add(1*time.Minute), 0.002, 0.00045, 5),
	}

	stats, err := AnalyzeCoverage(tiny, path, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.CoveragePercent != 100 {
		t.Fatalf("CoveragePercent = %v, want clamped 100", stats.CoveragePercent)
	}
}

func TestAnalyzeCoveragePathMissesBlock(t *testing.T) {
	block := smallBlock()

	path := []domain.Ping{
		pathPing(t0, 0.01, 0.01, 8),
		pathPing(t0.Add(1*time.Minute), 0.011, 0.01, 8),
	}

	stats, err := AnalyzeCoverage(block, path, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.CoveragePercent != 0 || stats.CoveredAreaHa != 0 {
		t.Errorf("coverage = %v%% / %v ha, want zeros", stats.CoveragePercent, stats.CoveredAreaHa)
	}
	if len(stats.MissedAreas) != 1 {
		t.Fatalf("MissedAreas = %d parts, want the whole block", len(stats.MissedAreas))
	}
}

// Too little data is "undefined", distinct from zero coverage.
func TestAnalyzeCoverageInsufficientPath(t *testing.T) {
	block := smallBlock()

	_, err := AnalyzeCoverage(block, []domain.Ping{pathPing(t0, 0.0002, 0.0002, 5)}, 6)
	if !errors.Is(err, ErrInsufficientPath) {
		t.Fatalf("err = %v, want ErrInsufficientPath", err)
	}

	_, err = AnalyzeCoverage(block, nil, 6)
	if !errors.Is(err, ErrInsufficientPath) {
		t.Fatalf("err = %v, want ErrInsufficientPath", err)
	}
}

// Pings without a positive speed stay out of the speed stats but still
// shape the path.
func TestAnalyzeCoverageIgnoresNonPositiveSpeeds(t *testing.T) {
	block := smallBlock()

	zero := 0.0
	path := []domain.Ping{
		{TractorID: "tr-1", At: t0, Position: domain.Coordinates{Lon: 0.0002, Lat: 0.00045}},
		{TractorID: "tr-1", At: t0.Add(time.Minute), Position: domain.Coordinates{Lon: 0.0005, Lat: 0.00045}, SpeedKmh: &zero},
		pathPing(t0.Add(2*time.Minute), 0.0007, 0.00045, 9),
	}

	stats, err := AnalyzeCoverage(block, path, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.AverageSpeedKmh != 9 || stats.MaxSpeedKmh != 9 {
		t.Errorf("speeds = %v/%v, want 9/9", stats.AverageSpeedKmh, stats.MaxSpeedKmh)
	}
	if stats.TotalDistanceM <= 0 {
		t.Error("distance should cover the whole path")
	}
}
