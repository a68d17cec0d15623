package services

import (
	"fmt"

	"field-visit-service/internal/domain"
	"field-visit-service/internal/geo"
)

// SegmentVisits converts one tractor's ping sequence into raw entry/exit
// intervals against one block polygon, in a single pass.
//
// The input must be ascending by timestamp and de-duplicated. An interval
// closes at the last ping that was still inside, not at the first one
// outside; a lone inside ping yields a valid zero-duration interval with
// PingCount 1. In batch mode a tractor still inside at end of stream is
// closed at the last ping (use TrackerState for live streams).
//
// Pings straddling the polygon boundary can flicker in and out per the
// containment tie-break; the gap merge downstream absorbs that.
func SegmentVisits(block *domain.Block, pings []domain.Ping) ([]domain.RawInterval, error) {
	if err := domain.ValidateRing(block.Ring); err != nil {
		return nil, fmt.Errorf("segment visits: block %s: %w", block.ID, err)
	}

	// An empty stream is a normal no-op, not an error.
	if len(pings) == 0 {
		return nil, nil
	}

	var (
		intervals []domain.RawInterval
		open      *domain.RawInterval
		prev      domain.Ping
	)

	for _, p := range pings {
		inside := geo.Contains(p.Position, block.Ring)

		switch {
		case inside && open == nil:
			open = &domain.RawInterval{
				TractorID: p.TractorID,
				BlockID:   block.ID,
				StartedAt: p.At,
				EndedAt:   p.At,
				PingCount: 1,
			}
		case inside:
			open.EndedAt = p.At
			open.PingCount++
		case open != nil:
			open.EndedAt = prev.At
			intervals = append(intervals, *open)
			open = nil
		}
		prev = p
	}

	if open != nil {
		open.EndedAt = prev.At
		intervals = append(intervals, *open)
	}

	return intervals, nil
}
