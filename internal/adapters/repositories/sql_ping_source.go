package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"field-visit-service/internal/domain"
)

// Postgres-backed implementation of the PingSource port.
type SQLPingSource struct{ DB *sql.DB }

func NewSQLPingSource(db *sql.DB) *SQLPingSource {
	return &SQLPingSource{DB: db}
}

// Return the distinct tractor ids that reported pings for a tenant.
func (s *SQLPingSource) ListTractorIDs(ctx context.Context, tenantID, tractorID string) ([]string, error) {
	if s.DB == nil {
		return nil, errors.New("ping source: DB is nil")
	}

	query := `
	SELECT DISTINCT tractor_id
	FROM pings
	WHERE tenant_id = $1
		AND ($2 = '' OR tractor_id = $2)
	ORDER BY tractor_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, tenantID, tractorID)
	if err != nil {
		return nil, fmt.Errorf("list tractors: query pings table: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list tractors: scan row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tractors: row iteration: %w", err)
	}

	return ids, nil
}

// Return one keyset page of a tractor's pings, strictly after the cursor.
func (s *SQLPingSource) PingsPage(ctx context.Context, tenantID, tractorID string, after time.Time, limit int) ([]domain.Ping, error) {
	if s.DB == nil {
		return nil, errors.New("ping source: DB is nil")
	}

	query := `
	SELECT tractor_id, at, lon, lat, speed_kmh
	FROM pings
	WHERE tenant_id = $1
		AND tractor_id = $2
		AND at > $3
	ORDER BY at ASC
	LIMIT $4;
	`
	rows, err := s.DB.QueryContext(ctx, query, tenantID, tractorID, after, limit)
	if err != nil {
		return nil, fmt.Errorf("pings page: query pings table: %w", err)
	}
	defer rows.Close()

	return scanPings(rows, "pings page")
}

// Return the ordered ping path of one tractor between two instants, inclusive.
func (s *SQLPingSource) PingsBetween(ctx context.Context, tenantID, tractorID string, from, to time.Time) ([]domain.Ping, error) {
	if s.DB == nil {
		return nil, errors.New("ping source: DB is nil")
	}

	query := `
	SELECT tractor_id, at, lon, lat, speed_kmh
	FROM pings
	WHERE tenant_id = $1
		AND tractor_id = $2
		AND at >= $3
		AND at <= $4
	ORDER BY at ASC;
	`
	rows, err := s.DB.QueryContext(ctx, query, tenantID, tractorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("pings between: query pings table: %w", err)
	}
	defer rows.Close()

	return scanPings(rows, "pings between")
}

func scanPings(rows *sql.Rows, op string) ([]domain.Ping, error) {
	pings := make([]domain.Ping, 0, 64)
	for rows.Next() {
		var p domain.Ping
		var speed sql.NullFloat64
		if err := rows.Scan(&p.TractorID, &p.At, &p.Position.Lon, &p.Position.Lat, &speed); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		if speed.Valid {
			v := speed.Float64
			p.SpeedKmh = &v
		}
		p.At = p.At.UTC()
		pings = append(pings, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return pings, nil
}
