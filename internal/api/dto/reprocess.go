package dto

type ReprocessRequest struct {
	TenantID  string `json:"tenant_id"`
	BlockID   string `json:"block_id"`
	TractorID string `json:"tractor_id"`
}

type ReprocessResponse struct {
	Success        bool     `json:"success"`
	VisitsCreated  int      `json:"visits_created"`
	MetricsUpdated int      `json:"metrics_updated"`
	Errors         []string `json:"errors"`
}
