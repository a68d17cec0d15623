package domain

import "time"

// A piece of mobile equipment reporting GPS positions.
type Tractor struct {
	ID    string
	Label string
}

// One timestamped GPS sample for a tractor. Speed is optional (nil when the
// device does not report it) and expressed in km/h.
type Ping struct {
	TractorID string
	At        time.Time
	Position  Coordinates
	SpeedKmh  *float64
}

// DeduplicatePings collapses samples sharing a timestamp to the first one.
// The input must already be in ascending timestamp order.
func DeduplicatePings(pings []Ping) []Ping {
	if len(pings) < 2 {
		return pings
	}

	out := pings[:1]
	for _, p := range pings[1:] {
		if p.At.Equal(out[len(out)-1].At) {
			continue
		}
		out = append(out, p)
	}
	return out
}
