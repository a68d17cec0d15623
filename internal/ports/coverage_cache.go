package ports

import (
	"context"

	"field-visit-service/internal/domain"
)

// Port: an optional cache for on-demand coverage results. Coverage stats are
// ephemeral by contract, so a miss only costs recomputation.
type CoverageCache interface {
	// Return the cached stats for a visit, or (nil, nil) on a miss.
	Get(ctx context.Context, visitID string) (*domain.CoverageStats, error)

	// Store stats for a visit until the cache's TTL expires them.
	Put(ctx context.Context, visitID string, stats domain.CoverageStats) error
}
