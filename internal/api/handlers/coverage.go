package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"field-visit-service/internal/api/dto"
	"field-visit-service/internal/domain"
	"field-visit-service/internal/ports"
	"field-visit-service/internal/services"
)

type CoverageHandler struct {
	Blocks     ports.BlockRepository
	Pings      ports.PingSource
	Visits     ports.VisitStore
	Cache      ports.CoverageCache
	WorkWidthM float64
}

// Compute coverage stats for one visit on demand. Results are ephemeral;
// the cache, when configured, only short-circuits recomputation.
func (h *CoverageHandler) Compute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.CoverageRequest

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

	if req.VisitID == "" {
		writeError(w, r, http.StatusBadRequest, "visit_id is required")
		return
	}

	visit, err := h.Visits.GetVisit(r.Context(), req.VisitID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	// Default-width requests on closed visits can reuse a cached result.
	// A custom width changes the geometry, and an open visit's path is
	// still growing, so both always recompute.
	useCache := h.Cache != nil && req.WorkWidthMeters == 0 && visit.EndedAt != nil
	if useCache {
		if stats, err := h.Cache.Get(r.Context(), req.VisitID); err == nil && stats != nil {
			writeJSON(w, r, http.StatusOK, coverageResponse(stats))
			return
		}
	}

	stats, err := h.compute(r, req, visit)
	switch {
	case errors.Is(err, services.ErrInsufficientPath):
		// "No data" is not zero coverage; report it as such.
		writeError(w, r, http.StatusUnprocessableEntity, "visit has too few pings for coverage analysis")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if useCache {
		if err := h.Cache.Put(r.Context(), req.VisitID, *stats); err != nil {
			log.Printf("coverage cache put failed: visit=%s err=%v", req.VisitID, err)
		}
	}

	writeJSON(w, r, http.StatusOK, coverageResponse(stats))
}

func (h *CoverageHandler) compute(r *http.Request, req dto.CoverageRequest, visit *domain.Visit) (*domain.CoverageStats, error) {
	ctx := r.Context()

	blocks, err := h.Blocks.ListBlocks(ctx, visit.TenantID, visit.BlockID)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, errors.New("block for visit no longer exists")
	}

	end := time.Now().UTC()
	if visit.EndedAt != nil {
		end = *visit.EndedAt
	}

	path, err := h.Pings.PingsBetween(ctx, visit.TenantID, visit.TractorID, visit.StartedAt, end)
	if err != nil {
		return nil, err
	}

	width := req.WorkWidthMeters
	if width == 0 {
		width = h.WorkWidthM
	}

	return services.AnalyzeCoverage(blocks[0], path, width)
}

func coverageResponse(stats *domain.CoverageStats) dto.CoverageResponse {
	missed := make([][][]float64, 0, len(stats.MissedAreas))
	for _, ring := range stats.MissedAreas {
		coords := make([][]float64, 0, len(ring))
		for _, c := range ring {
			coords = append(coords, c.CoordsToList())
		}
		missed = append(missed, coords)
	}

	return dto.CoverageResponse{
		AverageSpeedKmh:    stats.AverageSpeedKmh,
		MaxSpeedKmh:        stats.MaxSpeedKmh,
		CoveragePercent:    stats.CoveragePercent,
		CoveredAreaHa:      stats.CoveredAreaHa,
		TotalDistanceM:     stats.TotalDistanceM,
		MissedAreas:        missed,
		MissedAreasUnknown: stats.MissedAreasUnknown,
	}
}
