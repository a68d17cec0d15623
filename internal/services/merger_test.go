package services

import (
	"testing"
	"time"

	"field-visit-service/internal/domain"
)

func rawIv(start, end time.Time, pings int) domain.RawInterval {
	return domain.RawInterval{
		TractorID: "tr-1",
		BlockID:   "block-1",
		StartedAt: start,
		EndedAt:   end,
		PingCount: pings,
	}
}

func TestMergeIntervalsBridgesShortGaps(t *testing.T) {
	// Intervals at [1,2], [2,3.2], [3.5,4] minutes: gaps of 0 and 0.3
	// minutes, both far under the 30 minute threshold.
	intervals := []domain.RawInterval{
		rawIv(t0.Add(1*time.Minute), t0.Add(2*time.Minute), 3),
		rawIv(t0.Add(2*time.Minute), t0.Add(3*time.Minute+12*time.Second), 4),
		rawIv(t0.Add(3*time.Minute+30*time.Second), t0.Add(4*time.Minute), 2),
	}

	visits := MergeIntervals("tenant-1", intervals, DefaultMergeGap)
	if len(visits) != 1 {
		t.Fatalf("expected 1 visit, got %d", len(visits))
	}

	v := visits[0]
	if !v.StartedAt.Equal(t0.Add(1 * time.Minute)) {
		t.Errorf("StartedAt = %v", v.StartedAt)
	}
	if v.EndedAt == nil || !v.EndedAt.Equal(t0.Add(4*time.Minute)) {
		t.Errorf("EndedAt = %v", v.EndedAt)
	}
	if v.PingCount != 9 {
		t.Errorf("PingCount = %d, want 9", v.PingCount)
	}
	if v.ID == "" {
		t.Error("visit should get an id")
	}
	if v.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q", v.TenantID)
	}
}

// The gap comparison is strict: exactly the threshold starts a new visit,
// a hair under it merges.
func TestMergeIntervalsGapBoundary(t *testing.T) {
	gap := 30 * time.Minute
	first := rawIv(t0, t0.Add(10*time.Minute), 5)

	cases := []struct {
		name       string
		secondAt   time.Time
		wantVisits int
	}{
		{"gap just under threshold", first.EndedAt.Add(gap - time.Second), 1},
		{"gap exactly threshold", first.EndedAt.Add(gap), 2},
		{"gap just over threshold", first.EndedAt.Add(gap + time.Second), 2},
	}

	for _, tc := range cases {
		second := rawIv(tc.secondAt, tc.secondAt.Add(5*time.Minute), 3)
		visits := MergeIntervals("tenant-1", []domain.RawInterval{first, second}, gap)
		if len(visits) != tc.wantVisits {
			t.Errorf("%s: got %d visits, want %d", tc.name, len(visits), tc.wantVisits)
		}
	}
}

func TestMergeIntervalsKeepsDistantVisitsApart(t *testing.T) {
	intervals := []domain.RawInterval{
		rawIv(t0, t0.Add(10*time.Minute), 11),
		rawIv(t0.Add(55*time.Minute), t0.Add(70*time.Minute), 16),
	}

	visits := MergeIntervals("tenant-1", intervals, DefaultMergeGap)
	if len(visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(visits))
	}

	if visits[0].PingCount != 11 || visits[1].PingCount != 16 {
		t.Errorf("ping counts = %d, %d", visits[0].PingCount, visits[1].PingCount)
	}
	if !visits[0].StartedAt.Before(visits[1].StartedAt) {
		t.Error("visits out of order")
	}
}

func TestMergeIntervalsEmptyInput(t *testing.T) {
	if visits := MergeIntervals("tenant-1", nil, DefaultMergeGap); visits != nil {
		t.Fatalf("expected nil, got %d visits", len(visits))
	}
}
