package domain

import "time"

// An unmerged single entry/exit detection for one tractor in one block.
// Raw intervals only exist between segmentation and gap-merging; they are
// never persisted.
type RawInterval struct {
	TractorID string
	BlockID   string
	StartedAt time.Time
	EndedAt   time.Time
	PingCount int
}

// A merged, persisted interval of a tractor's continuous-or-near-continuous
// presence inside a block. EndedAt is nil while a live interval is still open.
//
// Invariant: for a fixed (block, tractor) pair, visits are pairwise
// non-overlapping and ordered by StartedAt.
type Visit struct {
	ID        string
	BlockID   string
	TenantID  string
	TractorID string
	StartedAt time.Time
	EndedAt   *time.Time
	PingCount int
}

// LastActivity is the instant the visit was last known active: EndedAt when
// closed, StartedAt while still open.
func (v Visit) LastActivity() time.Time {
	if v.EndedAt != nil {
		return *v.EndedAt
	}
	return v.StartedAt
}
