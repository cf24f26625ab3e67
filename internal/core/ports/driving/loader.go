package driving

import (
	"context"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// ReferenceLoader resolves the external reference graph of a master document.
type ReferenceLoader interface {
	// Decode runs the loading loop to a fixed point. Node failures are recorded
	// on the nodes; only cancellation of ctx is returned as an error.
	// Calling Decode again after completion re-examines deferred nodes only.
	Decode(ctx context.Context) error

	// Retry moves the named deferred nodes (all deferred nodes when none are
	// named) back to pending and runs the loop.
	Retry(ctx context.Context, names ...string) error

	// Root returns the node of the starting document.
	Root() *domain.ReferenceNode

	// Nodes returns the node collection keyed by canonical name.
	Nodes() map[string]*domain.ReferenceNode

	// AllNodes returns every node in creation order.
	AllNodes() []*domain.ReferenceNode

	// Node looks up the node holding a canonical name.
	Node(name string) (*domain.ReferenceNode, bool)

	// Children returns the nodes discovered from parent.
	Children(parent *domain.ReferenceNode) []*domain.ReferenceNode

	// Models returns the union of decoded models across loaded nodes.
	Models() []*domain.Model

	// Statuses returns each canonical name's status for progress reporting.
	Statuses() map[string]domain.Status

	// Deferred lists the locations of deferred nodes.
	Deferred() []domain.DocumentSourceLocation

	// Describe reads the type and version of the document file that
	// produced n from its parent's model. The root has no description.
	Describe(n *domain.ReferenceNode) (domain.DocumentInfo, error)
}
