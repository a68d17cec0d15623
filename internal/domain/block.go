package domain

import (
	"errors"
	"fmt"
)

// A monitored polygonal field region. The polygon is a single closed outer
// ring of lon/lat vertices with no holes. Blocks are immutable here; edits
// happen in an external CRUD layer.
type Block struct {
	ID       string
	TenantID string
	Name     string
	Ring     []Coordinates
}

var ErrBadRing = errors.New("polygon ring is malformed")

// ValidateRing rejects rings a containment or area computation cannot use:
// fewer than 4 vertices (3 distinct plus the closing one) or an unclosed ring.
func ValidateRing(ring []Coordinates) error {
	if len(ring) < 4 {
		return fmt.Errorf("%w: need at least 4 vertices, got %d", ErrBadRing, len(ring))
	}

	first, last := ring[0], ring[len(ring)-1]
	if first.Lon != last.Lon || first.Lat != last.Lat {
		return fmt.Errorf("%w: ring is not closed", ErrBadRing)
	}

	return nil
}
