package ports

import (
	"context"

	"field-visit-service/internal/domain"
)

// Port: a boundary for retrieving Block definitions from an external store.
// Block editing is a CRUD concern outside this service.
type BlockRepository interface {
	// Return all blocks for a tenant, optionally narrowed to one block id.
	ListBlocks(ctx context.Context, tenantID, blockID string) ([]*domain.Block, error)
}
