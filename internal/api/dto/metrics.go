package dto

import "time"

type BlockMetricsResponse struct {
	BlockID       string     `json:"block_id"`
	LastSeenAt    *time.Time `json:"last_seen_at"`
	LastTractorID *string    `json:"last_tractor_id"`
	TotalPasses   int        `json:"total_passes"`
	Passes24h     int        `json:"passes_24h"`
	Passes7d      int        `json:"passes_7d"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ListMetricsResponse struct {
	Metrics []BlockMetricsResponse `json:"metrics"`
}
