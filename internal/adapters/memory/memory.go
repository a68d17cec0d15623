// Package memory provides in-memory implementations of the storage ports
// for tests and local experiments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"field-visit-service/internal/domain"
)

// BlockRepository serves a fixed set of blocks.
type BlockRepository struct {
	Blocks []*domain.Block
}

func (r *BlockRepository) ListBlocks(_ context.Context, tenantID, blockID string) ([]*domain.Block, error) {
	var out []*domain.Block
	for _, b := range r.Blocks {
		if b.TenantID != tenantID {
			continue
		}
		if blockID != "" && b.ID != blockID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// PingSource serves fixed per-tractor ping streams, already time-ordered.
type PingSource struct {
	ByTractor map[string][]domain.Ping
}

func (s *PingSource) ListTractorIDs(_ context.Context, _ string, tractorID string) ([]string, error) {
	if tractorID != "" {
		if _, ok := s.ByTractor[tractorID]; !ok {
			return nil, nil
		}
		return []string{tractorID}, nil
	}

	ids := make([]string, 0, len(s.ByTractor))
	for id := range s.ByTractor {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *PingSource) PingsPage(_ context.Context, _ string, tractorID string, after time.Time, limit int) ([]domain.Ping, error) {
	var page []domain.Ping
	for _, p := range s.ByTractor[tractorID] {
		if !p.At.After(after) {
			continue
		}
		page = append(page, p)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (s *PingSource) PingsBetween(_ context.Context, _ string, tractorID string, from, to time.Time) ([]domain.Ping, error) {
	var out []domain.Ping
	for _, p := range s.ByTractor[tractorID] {
		if p.At.Before(from) || p.At.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// VisitStore keeps visits and metrics in maps behind a mutex. FailReplace
// lets a test force persistence errors for chosen block ids.
type VisitStore struct {
	mu          sync.Mutex
	visits      map[string][]domain.Visit // block id -> visits
	metrics     map[string]domain.BlockMetrics
	FailReplace map[string]bool
}

func NewVisitStore() *VisitStore {
	return &VisitStore{
		visits:  make(map[string][]domain.Visit),
		metrics: make(map[string]domain.BlockMetrics),
	}
}

func (s *VisitStore) ReplaceVisits(_ context.Context, blockID, tractorID string, visits []domain.Visit, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReplace[blockID] {
		return fmt.Errorf("store unavailable for block %s", blockID)
	}

	kept := s.visits[blockID][:0:0]
	for _, v := range s.visits[blockID] {
		if tractorID == "" || v.TractorID == tractorID {
			continue
		}
		kept = append(kept, v)
	}
	kept = append(kept, visits...)
	sort.Slice(kept, func(i, j int) bool { return kept[i].StartedAt.Before(kept[j].StartedAt) })
	s.visits[blockID] = kept
	return nil
}

func (s *VisitStore) ListVisits(_ context.Context, blockID string) ([]domain.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Visit(nil), s.visits[blockID]...), nil
}

func (s *VisitStore) GetVisit(_ context.Context, visitID string) (*domain.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, vs := range s.visits {
		for _, v := range vs {
			if v.ID == visitID {
				out := v
				return &out, nil
			}
		}
	}
	return nil, fmt.Errorf("visit %s not found", visitID)
}

func (s *VisitStore) UpsertMetrics(_ context.Context, m domain.BlockMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[m.BlockID] = m
	return nil
}

func (s *VisitStore) ListMetrics(_ context.Context, _ string) ([]domain.BlockMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.BlockMetrics, 0, len(s.metrics))
	for _, m := range s.metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlockID < out[j].BlockID })
	return out, nil
}

// Metrics returns the stored metrics row for one block, if present.
func (s *VisitStore) Metrics(blockID string) (domain.BlockMetrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metrics[blockID]
	return m, ok
}

// CoverageCache keeps coverage results in a map and counts writes, so a
// test can tell a cached response from a recomputed one.
type CoverageCache struct {
	mu    sync.Mutex
	store map[string]domain.CoverageStats
	Puts  int
}

func NewCoverageCache() *CoverageCache {
	return &CoverageCache{store: make(map[string]domain.CoverageStats)}
}

func (c *CoverageCache) Get(_ context.Context, visitID string) (*domain.CoverageStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.store[visitID]; ok {
		out := s
		return &out, nil
	}
	return nil, nil
}

func (c *CoverageCache) Put(_ context.Context, visitID string, stats domain.CoverageStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Puts++
	c.store[visitID] = stats
	return nil
}
