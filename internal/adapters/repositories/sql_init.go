package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema. Safe to run on every startup.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createBlocksQuery := `
	CREATE TABLE IF NOT EXISTS blocks (
		block_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		ring JSONB NOT NULL
	);
	`

	createPingsQuery := `
	CREATE TABLE IF NOT EXISTS pings (
		tenant_id TEXT NOT NULL,
		tractor_id TEXT NOT NULL,
		at TIMESTAMPTZ NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		speed_kmh DOUBLE PRECISION,
		PRIMARY KEY (tenant_id, tractor_id, at)
	);
	`

	createVisitsQuery := `
	CREATE TABLE IF NOT EXISTS visits (
		visit_id TEXT PRIMARY KEY,
		block_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		tractor_id TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		ping_count INTEGER NOT NULL
	);
	`

	createMetricsQuery := `
	CREATE TABLE IF NOT EXISTS block_metrics (
		block_id TEXT PRIMARY KEY,
		last_seen_at TIMESTAMPTZ,
		last_tractor_id TEXT,
		total_passes INTEGER NOT NULL,
		passes_24h INTEGER NOT NULL,
		passes_7d INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	createBlockTenantIndex := `
	CREATE INDEX IF NOT EXISTS idx_blocks_tenant ON blocks(tenant_id);
	`

	createVisitScopeIndex := `
	CREATE INDEX IF NOT EXISTS idx_visits_block_tractor_started
	ON visits(block_id, tractor_id, started_at);
	`

	statements := []string{
		createBlocksQuery,
		createPingsQuery,
		createVisitsQuery,
		createMetricsQuery,
		createBlockTenantIndex,
		createVisitScopeIndex,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
