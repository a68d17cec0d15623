package domain

import "time"

// Summary counters for one block, recomputed wholesale from the block's
// complete visit set on every reprocessing run. The 24h/7d windows are
// write-time snapshots relative to the run's clock; they can go stale
// between runs and that is accepted behavior.
type BlockMetrics struct {
	BlockID       string
	LastSeenAt    *time.Time
	LastTractorID *string
	TotalPasses   int
	Passes24h     int
	Passes7d      int
	UpdatedAt     time.Time
}
