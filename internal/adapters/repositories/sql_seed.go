package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"field-visit-service/internal/domain"
)

type BlockSeed struct {
	BlockID  string      `json:"block_id"`
	TenantID string      `json:"tenant_id"`
	Name     string      `json:"name"`
	Ring     [][]float64 `json:"ring"`
}

type PingSeed struct {
	TenantID  string   `json:"tenant_id"`
	TractorID string   `json:"tractor_id"`
	At        string   `json:"at"`
	Lon       float64  `json:"lon"`
	Lat       float64  `json:"lat"`
	SpeedKmh  *float64 `json:"speed_kmh"`
}

type seedFixture struct {
	Blocks []BlockSeed `json:"blocks"`
	Pings  []PingSeed  `json:"pings"`
}

// Populate the database with blocks and pings from a JSON fixture, for
// local runs. Rows already present are replaced.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed fixture: read %q: %w", jsonPath, err)
	}

	fixture, err := decodeSeed(bytes)
	if err != nil {
		return err
	}

	if db == nil {
		return errors.New("seed fixture: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed fixture: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	blockQuery := `
	INSERT INTO blocks (block_id, tenant_id, name, ring)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (block_id) DO UPDATE
	SET tenant_id = EXCLUDED.tenant_id,
		name = EXCLUDED.name,
		ring = EXCLUDED.ring;
	`
	blockStmt, err := tx.Prepare(blockQuery)
	if err != nil {
		return fmt.Errorf("seed fixture: prepare block insert: %w", err)
	}
	defer blockStmt.Close()

	for _, b := range fixture.Blocks {
		ring, err := EncodeRing(seedRing(b.Ring))
		if err != nil {
			return fmt.Errorf("seed fixture: encode ring for block %s: %w", b.BlockID, err)
		}
		if _, err := blockStmt.Exec(b.BlockID, b.TenantID, b.Name, ring); err != nil {
			return fmt.Errorf("seed fixture: insert block_id=%s: %w", b.BlockID, err)
		}
	}

	pingQuery := `
	INSERT INTO pings (tenant_id, tractor_id, at, lon, lat, speed_kmh)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (tenant_id, tractor_id, at) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		speed_kmh = EXCLUDED.speed_kmh;
	`
	pingStmt, err := tx.Prepare(pingQuery)
	if err != nil {
		return fmt.Errorf("seed fixture: prepare ping insert: %w", err)
	}
	defer pingStmt.Close()

	for i, p := range fixture.Pings {
		at, err := time.Parse(time.RFC3339, p.At)
		if err != nil {
			return fmt.Errorf("seed fixture: ping at index %d: parse at: %w", i+1, err)
		}
		var speed sql.NullFloat64
		if p.SpeedKmh != nil {
			speed = sql.NullFloat64{Float64: *p.SpeedKmh, Valid: true}
		}
		if _, err := pingStmt.Exec(p.TenantID, p.TractorID, at.UTC(), p.Lon, p.Lat, speed); err != nil {
			return fmt.Errorf("seed fixture: insert ping at index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fixture: commit tx: %w", err)
	}

	return nil
}

// decodeSeed parses and validates a fixture before any row is written.
func decodeSeed(data []byte) (*seedFixture, error) {
	var fixture seedFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("seed fixture: parse json: %w", err)
	}

	for i, b := range fixture.Blocks {
		if strings.TrimSpace(b.BlockID) == "" {
			return nil, fmt.Errorf("seed fixture: block at index %d: block_id cannot be empty", i+1)
		}
		if strings.TrimSpace(b.TenantID) == "" {
			return nil, fmt.Errorf("seed fixture: block at index %d: tenant_id cannot be empty", i+1)
		}
		for j, v := range b.Ring {
			if len(v) != 2 {
				return nil, fmt.Errorf("seed fixture: block %s: vertex %d has %d components", b.BlockID, j, len(v))
			}
		}
		if err := domain.ValidateRing(seedRing(b.Ring)); err != nil {
			return nil, fmt.Errorf("seed fixture: block %s: %w", b.BlockID, err)
		}
	}

	for i, p := range fixture.Pings {
		if strings.TrimSpace(p.TenantID) == "" || strings.TrimSpace(p.TractorID) == "" {
			return nil, fmt.Errorf("seed fixture: ping at index %d: tenant_id and tractor_id cannot be empty", i+1)
		}
		if _, err := time.Parse(time.RFC3339, p.At); err != nil {
			return nil, fmt.Errorf("seed fixture: ping at index %d: parse at: %w", i+1, err)
		}
	}

	return &fixture, nil
}

func seedRing(pairs [][]float64) []domain.Coordinates {
	ring := make([]domain.Coordinates, 0, len(pairs))
	for _, p := range pairs {
		if len(p) != 2 {
			continue
		}
		ring = append(ring, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}
	return ring
}
