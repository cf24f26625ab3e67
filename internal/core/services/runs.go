package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/core/ports/driving"
	"github.com/custodia-labs/stepref/internal/logger"
)

// Ensure RunService implements the interface.
var _ driving.RunService = (*RunService)(nil)

// RunService records resolution runs in a RunStore.
type RunService struct {
	store driven.RunStore
	newID func() string
	now   func() time.Time
}

// NewRunService creates a run service. newID generates run identifiers.
func NewRunService(store driven.RunStore, newID func() string) *RunService {
	return &RunService{store: store, newID: newID, now: time.Now}
}

// Record captures the loader's nodes and the linkages and persists them.
func (s *RunService) Record(
	ctx context.Context,
	loader driving.ReferenceLoader,
	linkages *domain.LinkageSet,
	startedAt time.Time,
) (*domain.Run, error) {
	if loader == nil {
		return nil, domain.ErrInvalidInput
	}
	root := loader.Root()
	run := &domain.Run{
		ID:         s.newID(),
		Root:       root.PrimaryLocation().String(),
		StartedAt:  startedAt,
		FinishedAt: s.now(),
		Linkages:   linkages.Records(),
	}
	for _, n := range loader.AllNodes() {
		rec := domain.RecordOf(n)
		info, err := loader.Describe(n)
		if err != nil {
			logger.Warn("Cannot describe %s: %v", n.Name, err)
		}
		rec.DocumentType, rec.Version = info.Type, info.Version
		run.Nodes = append(run.Nodes, rec)
	}

	if s.store == nil {
		return run, nil
	}
	if err := s.store.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	return run, nil
}

// Get retrieves a run by ID, or the latest run when id is empty.
func (s *RunService) Get(ctx context.Context, id string) (*domain.Run, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	if id == "" {
		return s.store.Latest(ctx)
	}
	return s.store.Get(ctx, id)
}

// List returns all runs, newest first.
func (s *RunService) List(ctx context.Context) ([]domain.Run, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx)
}

// Delete removes a run.
func (s *RunService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotFound
	}
	if id == "" {
		return domain.ErrInvalidInput
	}
	return s.store.Delete(ctx, id)
}
