package ap242

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

// Ensure Repository implements the interface.
var _ driven.Repository = (*Repository)(nil)

// Repository holds decoded models and the views currently open over them.
// It is safe for concurrent use.
type Repository struct {
	mu     sync.RWMutex
	models map[string]*domain.Model
	order  []string
	views  map[string]*SchemaInstance
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		models: make(map[string]*domain.Model),
		views:  make(map[string]*SchemaInstance),
	}
}

// AddModels registers models. Fails without registering any model when a
// name is empty or already taken.
func (r *Repository) AddModels(models ...*domain.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if m == nil || m.Name == "" {
			return fmt.Errorf("%w: model without a name", domain.ErrInvalidInput)
		}
		if _, exists := r.models[m.Name]; exists || seen[m.Name] {
			return fmt.Errorf("%w: model %q already registered", domain.ErrInvalidInput, m.Name)
		}
		seen[m.Name] = true
	}
	for _, m := range models {
		r.models[m.Name] = m
		r.order = append(r.order, m.Name)
	}
	return nil
}

// RemoveModels drops models by name. Unknown names are ignored.
func (r *Repository) RemoveModels(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		delete(r.models, name)
	}
	r.order = slices.DeleteFunc(r.order, func(name string) bool {
		_, ok := r.models[name]
		return !ok
	})
}

// Models returns registered models in registration order.
func (r *Repository) Models() []*domain.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Model, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.models[name])
	}
	return out
}

// Model looks up a registered model.
func (r *Repository) Model(name string) (*domain.Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// CreateSchemaInstance opens an empty view. View names are unique among open views.
func (r *Repository) CreateSchemaInstance(name string) (driven.SchemaInstance, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: view without a name", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.views[name]; exists {
		return nil, fmt.Errorf("%w: view %q is already open", domain.ErrInvalidInput, name)
	}
	v := &SchemaInstance{name: name, repo: r}
	r.views[name] = v
	return v, nil
}

// OpenViews returns the names of views not yet closed.
func (r *Repository) OpenViews() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Repository) release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, name)
}
