package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gosubgroup/domain/core"
	"gosubgroup/domain/run"
	"gosubgroup/ports"
)

// InMemoryRunRepository implements ports.RunRepository with in-memory storage
type InMemoryRunRepository struct {
	runs map[core.RunID]run.Run
	mu   sync.RWMutex
}

func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]run.Run)}
}

func (s *InMemoryRunRepository) Save(ctx context.Context, r *run.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *r
	stored.Subgroups = append([]run.SubgroupRecord(nil), r.Subgroups...)
	s.runs[r.ID()] = stored
	return nil
}

func (s *InMemoryRunRepository) Get(ctx context.Context, id core.RunID) (*run.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.runs[id]
	if !exists {
		return nil, fmt.Errorf("%w %s", core.ErrRunNotFound, id)
	}
	r.Subgroups = append([]run.SubgroupRecord(nil), r.Subgroups...)
	return &r, nil
}

func (s *InMemoryRunRepository) List(ctx context.Context, filters ports.RunFilters) ([]run.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []run.Summary
	for _, r := range s.runs {
		if filters.Status != nil && r.Status != *filters.Status {
			continue
		}
		if filters.Strategy != "" && r.Manifest.Strategy != filters.Strategy {
			continue
		}
		results = append(results, run.Summary{
			RunID:       r.ID(),
			DatasetName: r.Manifest.DatasetName,
			Strategy:    r.Manifest.Strategy,
			Status:      r.Status,
			Subgroups:   len(r.Subgroups),
			CreatedAt:   r.Manifest.CreatedAt,
		})
	}

	// Newest first, matching the SQL store
	sort.Slice(results, func(i, j int) bool {
		ti, tj := results[i].CreatedAt.Time(), results[j].CreatedAt.Time()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return results[i].RunID < results[j].RunID
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(results) {
			return nil, nil
		}
		results = results[filters.Offset:]
	}
	if filters.Limit > 0 && len(results) > filters.Limit {
		results = results[:filters.Limit]
	}
	return results, nil
}

func (s *InMemoryRunRepository) Delete(ctx context.Context, id core.RunID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[id]; !exists {
		return fmt.Errorf("%w %s", core.ErrRunNotFound, id)
	}
	delete(s.runs, id)
	return nil
}
