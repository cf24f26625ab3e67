package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// RunService records and retrieves resolution runs.
type RunService interface {
	// Record captures the loader's nodes and the linkages and persists them.
	Record(ctx context.Context, loader ReferenceLoader, linkages *domain.LinkageSet, startedAt time.Time) (*domain.Run, error)

	// Get retrieves a run by ID, or the latest run when id is empty.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// List returns all runs, newest first.
	List(ctx context.Context) ([]domain.Run, error)

	// Delete removes a run.
	Delete(ctx context.Context, id string) error
}
