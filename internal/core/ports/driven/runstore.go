package driven

import (
	"context"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// RunStore persists resolution runs.
type RunStore interface {
	// Save stores or replaces a run with its nodes and linkages.
	Save(ctx context.Context, run *domain.Run) error

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// Latest returns the most recently started run.
	Latest(ctx context.Context) (*domain.Run, error)

	// List returns all runs, newest first, without nodes or linkages.
	List(ctx context.Context) ([]domain.Run, error)

	// Delete removes a run.
	Delete(ctx context.Context, id string) error
}
