package services

import (
	"time"

	"field-visit-service/internal/domain"
)

// AggregateMetrics rolls a block's complete visit set (across all tractors)
// into summary counters. The rollup is a snapshot: counters are recomputed
// in full against the supplied clock, never patched incrementally, so the
// trailing windows are only as fresh as the last run.
func AggregateMetrics(blockID string, visits []domain.Visit, now time.Time) domain.BlockMetrics {
	m := domain.BlockMetrics{
		BlockID:     blockID,
		TotalPasses: len(visits),
		UpdatedAt:   now,
	}

	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for _, v := range visits {
		if !v.StartedAt.Before(dayAgo) {
			m.Passes24h++
		}
		if !v.StartedAt.Before(weekAgo) {
			m.Passes7d++
		}

		la := v.LastActivity()
		if m.LastSeenAt == nil || la.After(*m.LastSeenAt) {
			seen := la
			tractor := v.TractorID
			m.LastSeenAt = &seen
			m.LastTractorID = &tractor
		}
	}

	return m
}
