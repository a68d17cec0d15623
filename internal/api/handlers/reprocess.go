package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"field-visit-service/internal/api/dto"
	"field-visit-service/internal/services"
)

type ReprocessHandler struct {
	Deps services.ReprocessDeps
	Opts services.ReprocessOptions
}

// Reprocess runs one batch pass over the requested tenant scope. Per-block
// failures come back in the response body, not as an HTTP error, so partial
// progress is reported rather than discarded.
func (h *ReprocessHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ReprocessRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.TenantID == "" {
		writeError(w, r, http.StatusBadRequest, "tenant_id is required")
		return
	}

	res, err := services.Reprocess(r.Context(), services.ReprocessRequest{
		TenantID:  req.TenantID,
		BlockID:   req.BlockID,
		TractorID: req.TractorID,
	}, h.Deps, h.Opts)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	out := dto.ReprocessResponse{
		Success:        res.Success,
		VisitsCreated:  res.VisitsCreated,
		MetricsUpdated: res.MetricsUpdated,
		Errors:         res.Errors,
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}

	writeJSON(w, r, http.StatusOK, out)
}
