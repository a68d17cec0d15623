package services

import (
	"time"

	"github.com/google/uuid"

	"field-visit-service/internal/domain"
)

// DefaultMergeGap is the bridging threshold between raw intervals: a tractor
// leaving a block and returning within the gap counts as one visit.
const DefaultMergeGap = 30 * time.Minute

// MergeIntervals folds time-ordered, disjoint raw intervals for one
// (block, tractor) pair into final visits. Adjacent intervals whose gap is
// strictly less than mergeGap are bridged; a gap of exactly mergeGap starts
// a new visit. Because the input is ordered and disjoint, one greedy pass
// yields the minimal merge.
func MergeIntervals(tenantID string, intervals []domain.RawInterval, mergeGap time.Duration) []domain.Visit {
	if len(intervals) == 0 {
		return nil
	}

	current := intervals[0]
	var visits []domain.Visit

	emit := func(iv domain.RawInterval) {
		end := iv.EndedAt
		visits = append(visits, domain.Visit{
			ID:        uuid.NewString(),
			BlockID:   iv.BlockID,
			TenantID:  tenantID,
			TractorID: iv.TractorID,
			StartedAt: iv.StartedAt,
			EndedAt:   &end,
			PingCount: iv.PingCount,
		})
	}

	for _, next := range intervals[1:] {
		if next.StartedAt.Sub(current.EndedAt) < mergeGap {
			current.EndedAt = next.EndedAt
			current.PingCount += next.PingCount
			continue
		}
		emit(current)
		current = next
	}
	emit(current)

	return visits
}
