package services

import (
	"testing"
	"time"

	"field-visit-service/internal/domain"
)

func TestTrackerObserveAcrossTicks(t *testing.T) {
	block := testBlock()
	state := NewTrackerState()

	// Inside for three ticks: nothing closes yet.
	for i := 0; i < 3; i++ {
		if iv := state.Observe(block, pingAt("tr-1", t0.Add(time.Duration(i)*time.Minute), 0.5, 0.5)); iv != nil {
			t.Fatalf("tick %d closed an interval early: %+v", i, iv)
		}
	}
	if state.OpenCount() != 1 {
		t.Fatalf("OpenCount = %d, want 1", state.OpenCount())
	}

	// Exit closes at the last inside ping.
	iv := state.Observe(block, pingAt("tr-1", t0.Add(3*time.Minute), 5, 5))
	if iv == nil {
		t.Fatal("exit should close the interval")
	}
	if !iv.StartedAt.Equal(t0) || !iv.EndedAt.Equal(t0.Add(2*time.Minute)) {
		t.Errorf("interval = [%v, %v]", iv.StartedAt, iv.EndedAt)
	}
	if iv.PingCount != 3 {
		t.Errorf("PingCount = %d, want 3", iv.PingCount)
	}
	if state.OpenCount() != 0 {
		t.Errorf("OpenCount = %d after exit, want 0", state.OpenCount())
	}
}

func TestTrackerKeepsPairsIndependent(t *testing.T) {
	block := testBlock()
	state := NewTrackerState()

	state.Observe(block, pingAt("tr-1", t0, 0.5, 0.5))
	state.Observe(block, pingAt("tr-2", t0, 0.4, 0.4))

	// tr-1 leaves; tr-2 stays open.
	if iv := state.Observe(block, pingAt("tr-1", t0.Add(time.Minute), 5, 5)); iv == nil {
		t.Fatal("tr-1 exit should close its interval")
	}
	if state.OpenCount() != 1 {
		t.Fatalf("OpenCount = %d, want tr-2 still open", state.OpenCount())
	}
}

func TestTrackerOutsidePingIsNoop(t *testing.T) {
	block := testBlock()
	state := NewTrackerState()

	if iv := state.Observe(block, pingAt("tr-1", t0, 5, 5)); iv != nil {
		t.Fatalf("outside ping with no open interval returned %+v", iv)
	}
	if state.OpenCount() != 0 {
		t.Fatal("nothing should be open")
	}
}

func TestTrackerFlush(t *testing.T) {
	block := testBlock()
	state := NewTrackerState()

	state.Observe(block, pingAt("tr-1", t0, 0.5, 0.5))
	state.Observe(block, pingAt("tr-1", t0.Add(time.Minute), 0.5, 0.6))
	state.Observe(block, pingAt("tr-2", t0, 0.4, 0.4))

	closed := state.Flush()
	if len(closed) != 2 {
		t.Fatalf("Flush closed %d intervals, want 2", len(closed))
	}
	if state.OpenCount() != 0 {
		t.Error("Flush should empty the state")
	}

	for _, iv := range closed {
		if iv.TractorID == "tr-1" && !iv.EndedAt.Equal(t0.Add(time.Minute)) {
			t.Errorf("tr-1 interval ends at %v, want last seen ping", iv.EndedAt)
		}
	}
}

// The live tracker and the batch segmenter agree on the same stream.
func TestTrackerMatchesBatchSegmenter(t *testing.T) {
	block := testBlock()
	pings := []domain.Ping{
		pingAt("tr-1", t0, 0.5, 0.5),
		pingAt("tr-1", t0.Add(1*time.Minute), 0.6, 0.5),
		pingAt("tr-1", t0.Add(2*time.Minute), 5, 5),
		pingAt("tr-1", t0.Add(3*time.Minute), 0.4, 0.4),
		pingAt("tr-1", t0.Add(4*time.Minute), 5, 5),
	}

	batch, err := SegmentVisits(block, pings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := NewTrackerState()
	var live []domain.RawInterval
	for _, p := range pings {
		if iv := state.Observe(block, p); iv != nil {
			live = append(live, *iv)
		}
	}
	live = append(live, state.Flush()...)

	if len(batch) != len(live) {
		t.Fatalf("batch %d intervals, live %d", len(batch), len(live))
	}
	for i := range batch {
		if !batch[i].StartedAt.Equal(live[i].StartedAt) ||
			!batch[i].EndedAt.Equal(live[i].EndedAt) ||
			batch[i].PingCount != live[i].PingCount {
			t.Errorf("interval %d differs: batch %+v, live %+v", i, batch[i], live[i])
		}
	}
}
