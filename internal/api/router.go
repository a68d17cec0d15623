package api

import (
	"net/http"

	"field-visit-service/internal/api/handlers"
	"field-visit-service/internal/ports"
	"field-visit-service/internal/services"
)

// RouterConfig carries the wired ports and tunables the handlers need.
type RouterConfig struct {
	Blocks        ports.BlockRepository
	Pings         ports.PingSource
	Visits        ports.VisitStore
	Metrics       ports.MetricsStore
	CoverageCache ports.CoverageCache
	Reprocess     services.ReprocessOptions
	WorkWidthM    float64
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	reprocessHandler := &handlers.ReprocessHandler{
		Deps: services.ReprocessDeps{
			Blocks:  cfg.Blocks,
			Pings:   cfg.Pings,
			Visits:  cfg.Visits,
			Metrics: cfg.Metrics,
		},
		Opts: cfg.Reprocess,
	}
	metricsHandler := &handlers.MetricsHandler{Store: cfg.Metrics}
	coverageHandler := &handlers.CoverageHandler{
		Blocks:     cfg.Blocks,
		Pings:      cfg.Pings,
		Visits:     cfg.Visits,
		Cache:      cfg.CoverageCache,
		WorkWidthM: cfg.WorkWidthM,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/reprocess", reprocessHandler.Reprocess)
	mux.HandleFunc("/metrics", metricsHandler.List)
	mux.HandleFunc("/coverage", coverageHandler.Compute)

	return loggingMiddleware(mux)
}
