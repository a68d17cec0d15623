package services

import (
	"time"

	"field-visit-service/internal/domain"
	"field-visit-service/internal/geo"
)

// TrackerState holds the "currently inside" state of the live-tracking loop
// for every (tractor, block) pair. It is owned and passed by the caller of
// each tick; nothing here is package-level or goroutine-safe. The state is
// always re-derivable by running SegmentVisits over a trailing window, so a
// restart needs no recovery beyond starting empty.
type TrackerState struct {
	open map[trackKey]*openTrack
}

type trackKey struct {
	tractorID string
	blockID   string
}

type openTrack struct {
	startedAt time.Time
	lastAt    time.Time
	pingCount int
}

func NewTrackerState() *TrackerState {
	return &TrackerState{open: make(map[trackKey]*openTrack)}
}

// OpenCount returns how many (tractor, block) pairs are currently inside.
func (s *TrackerState) OpenCount() int { return len(s.open) }

// Observe feeds one live ping against one block and returns the raw
// interval closed by this ping, if any. Unlike the batch segmenter, an
// interval stays open across ticks until a genuine exit or a Flush.
func (s *TrackerState) Observe(block *domain.Block, p domain.Ping) *domain.RawInterval {
	key := trackKey{tractorID: p.TractorID, blockID: block.ID}
	track := s.open[key]
	inside := geo.Contains(p.Position, block.Ring)

	switch {
	case inside && track == nil:
		s.open[key] = &openTrack{startedAt: p.At, lastAt: p.At, pingCount: 1}
	case inside:
		track.lastAt = p.At
		track.pingCount++
	case track != nil:
		// Exited: the interval ends at the last ping seen inside.
		delete(s.open, key)
		return &domain.RawInterval{
			TractorID: p.TractorID,
			BlockID:   block.ID,
			StartedAt: track.startedAt,
			EndedAt:   track.lastAt,
			PingCount: track.pingCount,
		}
	}
	return nil
}

// Flush closes every open interval at its last-seen ping and empties the
// state, returning the closed intervals in no particular order.
func (s *TrackerState) Flush() []domain.RawInterval {
	var out []domain.RawInterval
	for key, track := range s.open {
		out = append(out, domain.RawInterval{
			TractorID: key.tractorID,
			BlockID:   key.blockID,
			StartedAt: track.startedAt,
			EndedAt:   track.lastAt,
			PingCount: track.pingCount,
		})
		delete(s.open, key)
	}
	return out
}
