package ports

import (
	"context"

	"field-visit-service/internal/domain"
)

// Port: persistence for merged visits. Writes replace whole scopes; visits
// are never patched field by field.
type VisitStore interface {
	// Atomically delete every stored visit in the (block, optional tractor)
	// scope and insert the replacement set, writing in batches of at most
	// batchSize rows. Idempotent for an unchanged input set.
	ReplaceVisits(ctx context.Context, blockID, tractorID string, visits []domain.Visit, batchSize int) error

	// Return all stored visits for one block, ordered by StartedAt.
	ListVisits(ctx context.Context, blockID string) ([]domain.Visit, error)

	// Return one visit by id.
	GetVisit(ctx context.Context, visitID string) (*domain.Visit, error)
}

// Port: persistence for per-block summary metrics.
type MetricsStore interface {
	// Insert or overwrite the metrics row for the block.
	UpsertMetrics(ctx context.Context, m domain.BlockMetrics) error

	// Return stored metrics for every block of a tenant.
	ListMetrics(ctx context.Context, tenantID string) ([]domain.BlockMetrics, error)
}
