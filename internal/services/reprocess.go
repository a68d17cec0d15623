package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"field-visit-service/internal/domain"
	"field-visit-service/internal/ports"
)

// ReprocessRequest scopes one batch run. TenantID is required; BlockID and
// TractorID optionally narrow the run to one block and/or one tractor.
type ReprocessRequest struct {
	TenantID  string
	BlockID   string
	TractorID string
}

// ReprocessResult summarizes one batch run. Errors holds human-readable
// per-block failures; a run with partial failures still reports the work
// that did complete.
type ReprocessResult struct {
	Success        bool
	VisitsCreated  int
	MetricsUpdated int
	Errors         []string
}

// ReprocessOptions carries the tunables of a run. Zero values fall back to
// the defaults below.
type ReprocessOptions struct {
	MergeGap       time.Duration
	PingPageSize   int
	VisitBatchSize int
	Workers        int
	Now            func() time.Time
}

const (
	DefaultPingPageSize   = 1000
	DefaultVisitBatchSize = 200
	DefaultWorkers        = 4

	// Errors past this bound are dropped; an operator staring at fifty
	// failures does not need the rest.
	maxReportedErrors = 50
)

// ReprocessDeps bundles the storage boundaries the orchestrator drives.
type ReprocessDeps struct {
	Blocks  ports.BlockRepository
	Pings   ports.PingSource
	Visits  ports.VisitStore
	Metrics ports.MetricsStore
}

type blockOutcome struct {
	visitsCreated  int
	metricsUpdated bool
	errs           []string
}

// Reprocess re-derives visits and metrics for every block in the request's
// scope, replacing stored state wholesale. Block units are independent, so
// they run on a bounded worker pool; a failing block is recorded and never
// aborts the others. Re-running on unchanged pings reproduces identical
// visit boundaries and counts.
func Reprocess(ctx context.Context, req ReprocessRequest, deps ReprocessDeps, opts ReprocessOptions) (*ReprocessResult, error) {
	if req.TenantID == "" {
		return nil, errors.New("reprocess: tenant_id is required")
	}
	applyDefaults(&opts)

	blocks, err := deps.Blocks.ListBlocks(ctx, req.TenantID, req.BlockID)
	if err != nil {
		return nil, fmt.Errorf("reprocess: list blocks: %w", err)
	}

	tractorIDs, err := deps.Pings.ListTractorIDs(ctx, req.TenantID, req.TractorID)
	if err != nil {
		return nil, fmt.Errorf("reprocess: list tractors: %w", err)
	}

	now := opts.Now()

	sem := make(chan struct{}, opts.Workers)
	outcomes := make(chan blockOutcome, len(blocks))
	var wg sync.WaitGroup

	for _, block := range blocks {
		wg.Add(1)
		go func(b *domain.Block) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			outcomes <- reprocessBlock(ctx, req, deps, opts, b, tractorIDs, now)
		}(block)
	}

	wg.Wait()
	close(outcomes)

	res := &ReprocessResult{}
	for o := range outcomes {
		res.VisitsCreated += o.visitsCreated
		if o.metricsUpdated {
			res.MetricsUpdated++
		}
		for _, e := range o.errs {
			if len(res.Errors) < maxReportedErrors {
				res.Errors = append(res.Errors, e)
			}
		}
	}
	res.Success = len(res.Errors) == 0

	return res, nil
}

// reprocessBlock is one independent unit of work: segment and merge every
// tractor's pings against the block, replace the stored visit scope, then
// recompute and upsert the block's metrics from the complete stored set.
// Delete-then-reinsert is idempotent, so an interrupted unit is safely
// re-runnable from scratch.
func reprocessBlock(
	ctx context.Context,
	req ReprocessRequest,
	deps ReprocessDeps,
	opts ReprocessOptions,
	block *domain.Block,
	tractorIDs []string,
	now time.Time,
) blockOutcome {
	var out blockOutcome

	if err := domain.ValidateRing(block.Ring); err != nil {
		out.errs = append(out.errs, fmt.Sprintf("block %s: %v", block.ID, err))
		return out
	}

	var visits []domain.Visit
	for _, tractorID := range tractorIDs {
		pings, err := readAllPings(ctx, deps.Pings, req.TenantID, tractorID, opts.PingPageSize)
		if err != nil {
			out.errs = append(out.errs, fmt.Sprintf("block %s tractor %s: read pings: %v", block.ID, tractorID, err))
			return out
		}

		intervals, err := SegmentVisits(block, pings)
		if err != nil {
			out.errs = append(out.errs, fmt.Sprintf("block %s tractor %s: %v", block.ID, tractorID, err))
			return out
		}

		visits = append(visits, MergeIntervals(req.TenantID, intervals, opts.MergeGap)...)
	}

	sort.Slice(visits, func(i, j int) bool {
		if !visits[i].StartedAt.Equal(visits[j].StartedAt) {
			return visits[i].StartedAt.Before(visits[j].StartedAt)
		}
		return visits[i].TractorID < visits[j].TractorID
	})

	if err := deps.Visits.ReplaceVisits(ctx, block.ID, req.TractorID, visits, opts.VisitBatchSize); err != nil {
		out.errs = append(out.errs, fmt.Sprintf("block %s: replace visits: %v", block.ID, err))
		return out
	}
	out.visitsCreated = len(visits)

	// Metrics roll up the block's complete stored set, which can include
	// other tractors' visits when the run was tractor-scoped.
	stored, err := deps.Visits.ListVisits(ctx, block.ID)
	if err != nil {
		out.errs = append(out.errs, fmt.Sprintf("block %s: list stored visits: %v", block.ID, err))
		return out
	}

	if err := deps.Metrics.UpsertMetrics(ctx, AggregateMetrics(block.ID, stored, now)); err != nil {
		out.errs = append(out.errs, fmt.Sprintf("block %s: upsert metrics: %v", block.ID, err))
		return out
	}
	out.metricsUpdated = true

	return out
}

// readAllPings drains a tractor's stream through the keyset-paginated port
// and collapses duplicate timestamps.
func readAllPings(ctx context.Context, src ports.PingSource, tenantID, tractorID string, pageSize int) ([]domain.Ping, error) {
	var all []domain.Ping
	var after time.Time

	for {
		page, err := src.PingsPage(ctx, tenantID, tractorID, after, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < pageSize {
			return domain.DeduplicatePings(all), nil
		}
		after = page[len(page)-1].At
	}
}

func applyDefaults(opts *ReprocessOptions) {
	if opts.MergeGap <= 0 {
		opts.MergeGap = DefaultMergeGap
	}
	if opts.PingPageSize <= 0 {
		opts.PingPageSize = DefaultPingPageSize
	}
	if opts.VisitBatchSize <= 0 {
		opts.VisitBatchSize = DefaultVisitBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
}
