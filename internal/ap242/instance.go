package ap242

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

// Ensure SchemaInstance implements the interface.
var _ driven.SchemaInstance = (*SchemaInstance)(nil)

// backRef records that From refers to some instance through attribute Attr
// of its partial record Type.
type backRef struct {
	from domain.EntityHandle
	typ  string
	attr int
}

// SchemaInstance is a temporary merged view over models of a Repository.
type SchemaInstance struct {
	name string
	repo *Repository

	mu       sync.RWMutex
	models   []*domain.Model
	byName   map[string]*domain.Model
	readOnly bool
	closed   bool

	// Built on first query; reset by Add.
	extent  map[string][]domain.EntityHandle
	inverse map[domain.EntityHandle][]backRef
}

// Name returns the view name.
func (s *SchemaInstance) Name() string {
	return s.name
}

// Add places models in the view.
func (s *SchemaInstance) Add(models ...*domain.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}
	if s.readOnly {
		return domain.ErrReadOnly
	}
	if s.byName == nil {
		s.byName = make(map[string]*domain.Model)
	}
	for _, m := range models {
		if m == nil {
			return fmt.Errorf("%w: nil model", domain.ErrInvalidInput)
		}
		if _, exists := s.byName[m.Name]; exists {
			continue
		}
		s.byName[m.Name] = m
		s.models = append(s.models, m)
	}
	s.extent, s.inverse = nil, nil
	return nil
}

// SetReadOnly freezes the view's model set and builds its indexes.
func (s *SchemaInstance) SetReadOnly() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly = true
	s.buildIndex()
}

// ReadOnly reports whether the view is frozen.
func (s *SchemaInstance) ReadOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readOnly
}

// Close disposes the view. Closing twice is a no-op.
func (s *SchemaInstance) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.models, s.byName = nil, nil
	s.extent, s.inverse = nil, nil
	s.mu.Unlock()

	s.repo.release(s.name)
	return nil
}

// index returns the type extents and inverse references, building them if needed.
// A closed view has none.
func (s *SchemaInstance) index() (map[string][]domain.EntityHandle, map[domain.EntityHandle][]backRef) {
	s.mu.RLock()
	if s.extent != nil || s.closed {
		defer s.mu.RUnlock()
		return s.extent, s.inverse
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extent == nil && !s.closed {
		s.buildIndex()
	}
	return s.extent, s.inverse
}

// buildIndex walks every instance once. Caller must hold the write lock.
func (s *SchemaInstance) buildIndex() {
	extent := make(map[string][]domain.EntityHandle)
	inverse := make(map[domain.EntityHandle][]backRef)

	for _, m := range s.models {
		for _, id := range m.Order {
			e := m.Entities[id]
			h := m.Handle(id)
			types := make(map[string]bool)
			for _, part := range e.Parts {
				types[part.Type] = true
				for super := range supertypes[part.Type] {
					types[super] = true
				}
				for i, v := range part.Params {
					for _, ref := range v.Refs() {
						target := m.Handle(ref)
						inverse[target] = append(inverse[target], backRef{from: h, typ: part.Type, attr: i})
					}
				}
			}
			for t := range types {
				extent[t] = append(extent[t], h)
			}
		}
	}
	s.extent, s.inverse = extent, inverse
}

// entity resolves a handle against the view's models.
func (s *SchemaInstance) entity(h domain.EntityHandle) (*domain.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byName[h.Model]
	if !ok {
		return nil, false
	}
	return m.Get(h.ID)
}

// attrs returns the attribute record of h as an instance of typeName: the
// partial record of that type, or the record of a subtype.
func (s *SchemaInstance) attrs(h domain.EntityHandle, typeName string) (domain.EntityPart, bool) {
	e, ok := s.entity(h)
	if !ok {
		return domain.EntityPart{}, false
	}
	if p, ok := e.Part(typeName); ok {
		return p, true
	}
	for _, p := range e.Parts {
		if isA(p.Type, typeName) {
			return p, true
		}
	}
	return domain.EntityPart{}, false
}

// is reports whether h is an instance of typeName.
func (s *SchemaInstance) is(h domain.EntityHandle, typeName string) bool {
	_, ok := s.attrs(h, typeName)
	return ok
}

// stringAttr returns attribute i of h as typeName, or "".
func (s *SchemaInstance) stringAttr(h domain.EntityHandle, typeName string, i int) string {
	p, ok := s.attrs(h, typeName)
	if !ok {
		return ""
	}
	str, _ := p.Param(i).AsString()
	return str
}

// refAttr returns the instance referenced by attribute i of h as typeName.
func (s *SchemaInstance) refAttr(h domain.EntityHandle, typeName string, i int) (domain.EntityHandle, bool) {
	p, ok := s.attrs(h, typeName)
	if !ok {
		return domain.EntityHandle{}, false
	}
	id, ok := p.Param(i).AsRef()
	if !ok {
		return domain.EntityHandle{}, false
	}
	return domain.EntityHandle{Model: h.Model, ID: id}, true
}

// refsAttr returns every instance referenced by attribute i of h as typeName.
func (s *SchemaInstance) refsAttr(h domain.EntityHandle, typeName string, i int) []domain.EntityHandle {
	p, ok := s.attrs(h, typeName)
	if !ok {
		return nil
	}
	var out []domain.EntityHandle
	for _, id := range p.Param(i).Refs() {
		out = append(out, domain.EntityHandle{Model: h.Model, ID: id})
	}
	return out
}

// usedIn returns the instances of typeName (or a subtype) whose attribute
// attr refers to target, once each, in file order.
func (s *SchemaInstance) usedIn(target domain.EntityHandle, typeName string, attr int) []domain.EntityHandle {
	_, inverse := s.index()
	var out []domain.EntityHandle
	seen := make(map[domain.EntityHandle]bool)
	for _, br := range inverse[target] {
		if br.attr != attr || !isA(br.typ, typeName) || seen[br.from] {
			continue
		}
		seen[br.from] = true
		out = append(out, br.from)
	}
	return out
}

// extentOf returns every instance of typeName (or a subtype), in file order.
func (s *SchemaInstance) extentOf(typeName string) []domain.EntityHandle {
	extent, _ := s.index()
	return append([]domain.EntityHandle(nil), extent[typeName]...)
}

// atMostOne enforces an at-most-one relationship.
func atMostOne(relation string, subject domain.EntityHandle, matches []domain.EntityHandle) (*domain.EntityHandle, error) {
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		h := matches[0]
		return &h, nil
	default:
		return nil, &domain.IntegrityError{Relation: relation, Subject: subject, Matches: matches}
	}
}

// appendUnique appends hs to dst, skipping handles already in seen.
func appendUnique(dst []domain.EntityHandle, seen map[domain.EntityHandle]bool, hs ...domain.EntityHandle) []domain.EntityHandle {
	for _, h := range hs {
		if !seen[h] {
			seen[h] = true
			dst = append(dst, h)
		}
	}
	return dst
}
