package driven

import "github.com/custodia-labs/stepref/internal/core/domain"

// ActivityMonitor observes the loader. Callbacks are diagnostic only and
// must not change loader state.
type ActivityMonitor interface {
	// StartedLoading is called before a load attempt.
	StartedLoading(node *domain.ReferenceNode)

	// CompletedLoading is called after a load attempt, whatever its outcome.
	CompletedLoading(node *domain.ReferenceNode)

	// Identified is called after children were discovered in parent.
	Identified(children []*domain.ReferenceNode, parent *domain.ReferenceNode)
}
