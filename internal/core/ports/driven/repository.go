package driven

import "github.com/custodia-labs/stepref/internal/core/domain"

// Repository owns every decoded model and creates short-lived views over them.
type Repository interface {
	// AddModels registers decoded models. Names must be unique.
	AddModels(models ...*domain.Model) error

	// RemoveModels drops models by name.
	RemoveModels(names ...string)

	// Models returns all registered models.
	Models() []*domain.Model

	// CreateSchemaInstance opens a temporary view. The caller must Close it.
	CreateSchemaInstance(name string) (SchemaInstance, error)
}

// SchemaInstance is a temporary merged view over a set of models.
// Lifecycle: create, Add models, SetReadOnly, query, Close.
type SchemaInstance interface {
	EntityQuery

	// Name returns the view name.
	Name() string

	// Add places models in the view. Fails once the view is read-only.
	Add(models ...*domain.Model) error

	// SetReadOnly freezes the view's model set.
	SetReadOnly()

	// Close disposes the view. Closing twice is a no-op.
	Close() error
}
