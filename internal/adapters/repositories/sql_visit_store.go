package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"field-visit-service/internal/domain"
	"field-visit-service/internal/platform/obs"
)

// Postgres-backed implementation of the VisitStore and MetricsStore ports.
type SQLVisitStore struct{ DB *sql.DB }

func NewSQLVisitStore(db *sql.DB) *SQLVisitStore {
	return &SQLVisitStore{DB: db}
}

// Atomically swap the stored visit set for one (block, optional tractor)
// scope. Delete and batched inserts share one transaction, so a failed run
// leaves the previous set intact and a rerun starts from a clean slate.
func (s *SQLVisitStore) ReplaceVisits(ctx context.Context, blockID, tractorID string, visits []domain.Visit, batchSize int) (err error) {
	defer obs.Time(ctx, "visits.replace")(&err)

	if s.DB == nil {
		return errors.New("visit store: DB is nil")
	}
	if blockID == "" {
		return errors.New("replace visits: blockID must not be empty")
	}
	if batchSize < 1 {
		return fmt.Errorf("replace visits: batch size must be positive, got %d", batchSize)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace visits: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery := `
	DELETE FROM visits
	WHERE block_id = $1
		AND ($2 = '' OR tractor_id = $2);
	`
	if _, err := tx.ExecContext(ctx, deleteQuery, blockID, tractorID); err != nil {
		return fmt.Errorf("replace visits: delete scope block=%s: %w", blockID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO visits (visit_id, block_id, tenant_id, tractor_id, started_at, ended_at, ping_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`)
	if err != nil {
		return fmt.Errorf("replace visits: prepare insert: %w", err)
	}
	defer stmt.Close()

	// Batches bound statement bursts between context checks; the visibility
	// unit stays the whole transaction.
	for start := 0; start < len(visits); start += batchSize {
		end := start + batchSize
		if end > len(visits) {
			end = len(visits)
		}

		for _, v := range visits[start:end] {
			if _, err := stmt.ExecContext(ctx, v.ID, v.BlockID, v.TenantID, v.TractorID, v.StartedAt, v.EndedAt, v.PingCount); err != nil {
				return fmt.Errorf("replace visits: insert visit %s: %w", v.ID, err)
			}
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("replace visits: canceled after batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace visits: commit tx: %w", err)
	}

	return nil
}

// Return all stored visits for one block, ordered by start time.
func (s *SQLVisitStore) ListVisits(ctx context.Context, blockID string) (_ []domain.Visit, err error) {
	defer obs.Time(ctx, "visits.list")(&err)

	if s.DB == nil {
		return nil, errors.New("visit store: DB is nil")
	}

	query := `
	SELECT visit_id, block_id, tenant_id, tractor_id, started_at, ended_at, ping_count
	FROM visits
	WHERE block_id = $1
	ORDER BY started_at ASC, tractor_id ASC;
	`
	rows, err := s.DB.QueryContext(ctx, query, blockID)
	if err != nil {
		return nil, fmt.Errorf("list visits: query visits table: %w", err)
	}
	defer rows.Close()

	visits := make([]domain.Visit, 0, 64)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("list visits: %w", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visits: row iteration: %w", err)
	}

	return visits, nil
}

// Return one visit by id, or a not-found error.
func (s *SQLVisitStore) GetVisit(ctx context.Context, visitID string) (*domain.Visit, error) {
	if s.DB == nil {
		return nil, errors.New("visit store: DB is nil")
	}

	query := `
	SELECT visit_id, block_id, tenant_id, tractor_id, started_at, ended_at, ping_count
	FROM visits
	WHERE visit_id = $1;
	`
	row := s.DB.QueryRowContext(ctx, query, visitID)

	v, err := scanVisit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get visit %s: %w", visitID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get visit: %w", err)
	}
	return &v, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanVisit(r rowScanner) (domain.Visit, error) {
	var v domain.Visit
	var ended sql.NullTime
	if err := r.Scan(&v.ID, &v.BlockID, &v.TenantID, &v.TractorID, &v.StartedAt, &ended, &v.PingCount); err != nil {
		return domain.Visit{}, err
	}
	v.StartedAt = v.StartedAt.UTC()
	if ended.Valid {
		t := ended.Time.UTC()
		v.EndedAt = &t
	}
	return v, nil
}

// Insert or overwrite the metrics row for one block.
func (s *SQLVisitStore) UpsertMetrics(ctx context.Context, m domain.BlockMetrics) error {
	if s.DB == nil {
		return errors.New("metrics store: DB is nil")
	}

	query := `
	INSERT INTO block_metrics (block_id, last_seen_at, last_tractor_id, total_passes, passes_24h, passes_7d, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (block_id) DO UPDATE
	SET last_seen_at = EXCLUDED.last_seen_at,
		last_tractor_id = EXCLUDED.last_tractor_id,
		total_passes = EXCLUDED.total_passes,
		passes_24h = EXCLUDED.passes_24h,
		passes_7d = EXCLUDED.passes_7d,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, query, m.BlockID, m.LastSeenAt, m.LastTractorID, m.TotalPasses, m.Passes24h, m.Passes7d, m.UpdatedAt); err != nil {
		return fmt.Errorf("upsert metrics block=%s: %w", m.BlockID, err)
	}

	return nil
}

// Return stored metrics for every block of a tenant.
func (s *SQLVisitStore) ListMetrics(ctx context.Context, tenantID string) ([]domain.BlockMetrics, error) {
	if s.DB == nil {
		return nil, errors.New("metrics store: DB is nil")
	}

	query := `
	SELECT m.block_id, m.last_seen_at, m.last_tractor_id, m.total_passes, m.passes_24h, m.passes_7d, m.updated_at
	FROM block_metrics m
	JOIN blocks b ON b.block_id = m.block_id
	WHERE b.tenant_id = $1
	ORDER BY m.block_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list metrics: query block_metrics table: %w", err)
	}
	defer rows.Close()

	metrics := make([]domain.BlockMetrics, 0, 16)
	for rows.Next() {
		var m domain.BlockMetrics
		var seen sql.NullTime
		var tractor sql.NullString
		if err := rows.Scan(&m.BlockID, &seen, &tractor, &m.TotalPasses, &m.Passes24h, &m.Passes7d, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list metrics: scan row: %w", err)
		}
		if seen.Valid {
			t := seen.Time.UTC()
			m.LastSeenAt = &t
		}
		if tractor.Valid {
			s := tractor.String
			m.LastTractorID = &s
		}
		m.UpdatedAt = m.UpdatedAt.UTC()
		metrics = append(metrics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list metrics: row iteration: %w", err)
	}

	return metrics, nil
}
