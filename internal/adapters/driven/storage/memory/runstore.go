package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.Run
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.Run),
	}
}

// Save stores or replaces a run.
func (s *RunStore) Save(_ context.Context, run *domain.Run) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = copyRun(*run)
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	run = copyRun(run)
	return &run, nil
}

// Latest returns the most recently started run.
func (s *RunStore) Latest(ctx context.Context) (*domain.Run, error) {
	runs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.Get(ctx, runs[0].ID)
}

// List returns all runs, newest first, without nodes or linkages.
func (s *RunStore) List(_ context.Context) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		run.Nodes, run.Linkages = nil, nil
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

// Delete removes a run.
func (s *RunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

func copyRun(r domain.Run) domain.Run {
	r.Nodes = append([]domain.NodeRecord(nil), r.Nodes...)
	r.Linkages = append([]domain.LinkageRecord(nil), r.Linkages...)
	return r
}
