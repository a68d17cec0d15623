package ports

import (
	"context"
	"time"

	"field-visit-service/internal/domain"
)

// Port: a boundary for reading per-tractor ping streams in ascending
// timestamp order. Ingestion of pings is out of scope.
type PingSource interface {
	// Return the distinct tractor ids that reported pings for a tenant,
	// optionally narrowed to one tractor id.
	ListTractorIDs(ctx context.Context, tenantID, tractorID string) ([]string, error)

	// Return one page of a tractor's pings strictly after the given
	// timestamp, ordered by timestamp ascending, at most limit rows.
	// Timestamps are unique per tractor, so they work as a keyset cursor.
	PingsPage(ctx context.Context, tenantID, tractorID string, after time.Time, limit int) ([]domain.Ping, error)

	// Return the ordered ping path of one tractor between two instants,
	// inclusive. Used to rebuild a visit's path for coverage analysis.
	PingsBetween(ctx context.Context, tenantID, tractorID string, from, to time.Time) ([]domain.Ping, error)
}
