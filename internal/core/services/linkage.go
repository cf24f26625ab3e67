package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/core/ports/driving"
	"github.com/custodia-labs/stepref/internal/logger"
)

// Ensure LinkageFinder implements the interface.
var _ driving.LinkageFinder = (*LinkageFinder)(nil)

// LinkageFinder matches shape representations of a master document against
// those of a detail document it references.
type LinkageFinder struct {
	loader driving.ReferenceLoader
	repo   driven.Repository

	mu    sync.Mutex
	cache map[[2]string]*domain.LinkageSet
}

// NewLinkageFinder creates a linkage finder over the loader's nodes.
func NewLinkageFinder(loader driving.ReferenceLoader, repo driven.Repository) *LinkageFinder {
	return &LinkageFinder{
		loader: loader,
		repo:   repo,
		cache:  make(map[[2]string]*domain.LinkageSet),
	}
}

// shapeRef is a master-side shape representation with its product, when known.
type shapeRef struct {
	rep     domain.EntityHandle
	product *driven.Product
}

// Find returns the linkages between parent and child.
func (f *LinkageFinder) Find(ctx context.Context, parent, child *domain.ReferenceNode) (*domain.LinkageSet, error) {
	if parent == nil || child == nil {
		return nil, domain.ErrInvalidInput
	}
	parentContent, ok := parent.Content()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotLoaded, parent.Name)
	}
	childContent, ok := child.Content()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotLoaded, child.Name)
	}

	key := [2]string{parent.Name, child.Name}
	f.mu.Lock()
	if cached, ok := f.cache[key]; ok {
		f.mu.Unlock()
		return cached, nil
	}
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Finds for different pairs may run at once and share a parent.
	master, err := f.openView(scopedViewName(parent.Name, "MASTER"), parentContent)
	if err != nil {
		return nil, err
	}
	defer f.closeView(master)

	detail, err := f.openView(scopedViewName(child.Name, "DETAIL"), childContent)
	if err != nil {
		return nil, err
	}
	defer f.closeView(detail)

	docFiles := referencingFiles(master, child.Name)
	if len(docFiles) == 0 {
		return nil, fmt.Errorf("%w: %s does not reference %s", domain.ErrNotLinked, parent.Name, child.Name)
	}

	set := domain.NewLinkageSet()
	index := indexShapes(detail)
	for _, ref := range masterShapes(master, docFiles) {
		k, ok := shapeKey(master, ref.rep, ref.product)
		if !ok {
			continue
		}
		for _, match := range index[k] {
			set.Add(domain.LinkageRecord{Master: ref.rep, Detail: match, Key: k})
		}
	}

	logger.Debug("Linked %s -> %s: %d linkages", parent.Name, child.Name, set.Len())

	f.mu.Lock()
	f.cache[key] = set
	f.mu.Unlock()
	return set, nil
}

// FindAll runs Find over every loaded parent/child edge of the loader.
func (f *LinkageFinder) FindAll(ctx context.Context) (*domain.LinkageSet, error) {
	all := domain.NewLinkageSet()
	var errs []error

	for _, n := range f.loader.AllNodes() {
		if n.Parent == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return all, err
		}
		if _, ok := n.Content(); !ok {
			continue
		}
		if _, ok := n.Parent.Content(); !ok {
			continue
		}
		set, err := f.Find(ctx, n.Parent, n)
		if err != nil {
			errs = append(errs, fmt.Errorf("link %s -> %s: %w", n.Parent.Name, n.Name, err))
			continue
		}
		for _, r := range set.Records() {
			all.Add(r)
		}
	}
	return all, errors.Join(errs...)
}

// openView creates a read-only view over content's models.
func (f *LinkageFinder) openView(name string, content *domain.ExchangeStructure) (driven.SchemaInstance, error) {
	view, err := f.repo.CreateSchemaInstance(name)
	if err != nil {
		return nil, fmt.Errorf("create view %s: %w", name, err)
	}
	if err := view.Add(content.Models...); err != nil {
		f.closeView(view)
		return nil, fmt.Errorf("populate view %s: %w", name, err)
	}
	view.SetReadOnly()
	return view, nil
}

func (f *LinkageFinder) closeView(view driven.SchemaInstance) {
	if err := view.Close(); err != nil {
		logger.Debug("Failed to close view %s: %v", view.Name(), err)
	}
}

// referencingFiles returns the document files in q whose declared file name is name.
func referencingFiles(q driven.EntityQuery, name string) []domain.EntityHandle {
	var out []domain.EntityHandle
	for _, df := range q.DocumentFiles() {
		locs, err := q.FileLocations(df)
		if err != nil {
			logger.Debug("Skipping document file %s: %v", df, err)
			continue
		}
		for _, loc := range locs {
			if loc.FileName == name {
				out = append(out, df)
				break
			}
		}
	}
	return out
}

// masterShapes collects the master-side shape representations tied to docFiles:
// shapes of products whose documents reference the files, and shapes defined
// externally by the files.
func masterShapes(q driven.EntityQuery, docFiles []domain.EntityHandle) []shapeRef {
	seen := make(map[domain.EntityHandle]bool)
	var out []shapeRef
	collect := func(rep domain.EntityHandle, product *driven.Product) {
		if seen[rep] {
			return
		}
		seen[rep] = true
		out = append(out, shapeRef{rep: rep, product: product})
	}

	for _, df := range docFiles {
		for _, item := range documentedItems(q, df) {
			shape, err := q.ShapeOf(item)
			if err != nil {
				skip(err, item)
				continue
			}
			if shape == nil {
				continue
			}
			product, err := q.ProductOf(item)
			if err != nil {
				skip(err, item)
				continue
			}
			reps, err := q.RepresentationsOf(*shape)
			if err != nil {
				skip(err, *shape)
				continue
			}
			for _, rep := range reps {
				collect(rep, product)
			}
		}

		reps, err := q.ExternallyDefinedShapes(df)
		if err != nil {
			skip(err, df)
			continue
		}
		for _, rep := range reps {
			collect(rep, nil)
		}
	}
	return out
}

// documentedItems follows document references of a file to the items they apply to.
func documentedItems(q driven.EntityQuery, docFile domain.EntityHandle) []domain.EntityHandle {
	docs, err := q.DocumentReferencesOf(docFile)
	if err != nil {
		skip(err, docFile)
		return nil
	}
	var items []domain.EntityHandle
	for _, doc := range docs {
		refs, err := q.ApplicationsOf(doc)
		if err != nil {
			skip(err, doc)
			continue
		}
		for _, ref := range refs {
			applied, err := q.ItemsOf(ref)
			if err != nil {
				skip(err, ref)
				continue
			}
			items = append(items, applied...)
		}
	}
	return items
}

// indexShapes keys every shape representation of the detail view.
func indexShapes(q driven.EntityQuery) map[domain.ShapeKey][]domain.EntityHandle {
	index := make(map[domain.ShapeKey][]domain.EntityHandle)
	for _, rep := range q.ShapeRepresentations() {
		k, ok := shapeKey(q, rep, nil)
		if !ok {
			continue
		}
		index[k] = append(index[k], rep)
	}
	return index
}

// shapeKey builds the cross-file key of rep. When product is nil it is looked
// up through the product definition the representation describes.
func shapeKey(q driven.EntityQuery, rep domain.EntityHandle, product *driven.Product) (domain.ShapeKey, bool) {
	if product == nil {
		def, err := q.DefinitionOfRepresentation(rep)
		if err != nil {
			skip(err, rep)
			return domain.ShapeKey{}, false
		}
		if def != nil {
			product, err = q.ProductOf(*def)
			if err != nil {
				skip(err, *def)
				return domain.ShapeKey{}, false
			}
		}
	}
	k := domain.ShapeKey{RepresentationName: q.RepresentationName(rep)}
	if product != nil {
		k.ProductID = product.ID
		k.ProductName = product.Name
	}
	return k, true
}

// skip logs a relationship that could not be followed.
func skip(err error, subject domain.EntityHandle) {
	if domain.IsIntegrityError(err) {
		logger.Warn("Skipping relationship of %s: %v", subject, err)
		return
	}
	logger.Debug("Skipping relationship of %s: %v", subject, err)
}
