package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"field-visit-service/internal/domain"
)

// Postgres-backed implementation of the BlockRepository port. Rings are
// stored as JSON arrays of [lon, lat] pairs.
type SQLBlockRepository struct{ DB *sql.DB }

func NewSQLBlockRepository(db *sql.DB) *SQLBlockRepository {
	return &SQLBlockRepository{DB: db}
}

// Return all blocks for a tenant, optionally narrowed to one block id.
func (s *SQLBlockRepository) ListBlocks(ctx context.Context, tenantID, blockID string) ([]*domain.Block, error) {
	if s.DB == nil {
		return nil, errors.New("block repository: DB is nil")
	}

	query := `
	SELECT block_id, tenant_id, name, ring
	FROM blocks
	WHERE tenant_id = $1
		AND ($2 = '' OR block_id = $2)
	ORDER BY block_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, tenantID, blockID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: query blocks table: %w", err)
	}
	defer rows.Close()

	blocks := make([]*domain.Block, 0, 16)
	for rows.Next() {
		var b domain.Block
		var ringJSON []byte
		if err := rows.Scan(&b.ID, &b.TenantID, &b.Name, &ringJSON); err != nil {
			return nil, fmt.Errorf("list blocks: scan row: %w", err)
		}

		ring, err := decodeRing(ringJSON)
		if err != nil {
			return nil, fmt.Errorf("list blocks: block %s: %w", b.ID, err)
		}
		b.Ring = ring
		blocks = append(blocks, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocks: row iteration: %w", err)
	}

	return blocks, nil
}

// decodeRing parses a stored JSON ring of [lon, lat] pairs.
func decodeRing(data []byte) ([]domain.Coordinates, error) {
	var pairs [][]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("decode ring: %w", err)
	}

	ring := make([]domain.Coordinates, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("decode ring: vertex %d has %d components", i, len(p))
		}
		ring = append(ring, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}
	return ring, nil
}

// EncodeRing renders a ring in the stored JSON format. Exposed for seeding.
func EncodeRing(ring []domain.Coordinates) ([]byte, error) {
	pairs := make([][]float64, 0, len(ring))
	for _, c := range ring {
		pairs = append(pairs, c.CoordsToList())
	}
	return json.Marshal(pairs)
}
