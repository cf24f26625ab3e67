package driving

import (
	"context"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// LinkageFinder discovers master/detail shape linkages between loaded documents.
type LinkageFinder interface {
	// Find returns the linkages between parent and a child it references.
	// Results are cached per node pair.
	Find(ctx context.Context, parent, child *domain.ReferenceNode) (*domain.LinkageSet, error)

	// FindAll runs Find over every loaded parent/child edge.
	FindAll(ctx context.Context) (*domain.LinkageSet, error)
}
