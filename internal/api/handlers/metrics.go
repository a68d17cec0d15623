package handlers

import (
	"net/http"

	"field-visit-service/internal/api/dto"
	"field-visit-service/internal/ports"
)

type MetricsHandler struct {
	Store ports.MetricsStore
}

// List returns the stored metrics snapshot for every block of a tenant.
// The 24h/7d counters are as of the last reprocessing run by design.
func (h *MetricsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeError(w, r, http.StatusBadRequest, "tenant_id is required")
		return
	}

	metrics, err := h.Store.ListMetrics(r.Context(), tenantID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	out := dto.ListMetricsResponse{Metrics: make([]dto.BlockMetricsResponse, 0, len(metrics))}
	for _, m := range metrics {
		out.Metrics = append(out.Metrics, dto.BlockMetricsResponse{
			BlockID:       m.BlockID,
			LastSeenAt:    m.LastSeenAt,
			LastTractorID: m.LastTractorID,
			TotalPasses:   m.TotalPasses,
			Passes24h:     m.Passes24h,
			Passes7d:      m.Passes7d,
			UpdatedAt:     m.UpdatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}
