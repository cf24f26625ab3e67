package driven

import "github.com/custodia-labs/stepref/internal/core/domain"

// Product identifies a product master.
type Product struct {
	Handle domain.EntityHandle
	ID     string
	Name   string
}

// EntityQuery answers relationship lookups over a merged view.
// Lookups that expect at most one match return *domain.IntegrityError
// when the population holds more.
type EntityQuery interface {
	// DocumentFiles enumerates document-file instances.
	DocumentFiles() []domain.EntityHandle

	// FileLocations returns the declared locations of a document file, or a
	// single fallback location derived from the file id.
	FileLocations(docFile domain.EntityHandle) ([]domain.DocumentSourceLocation, error)

	// DocumentReferencesOf returns the documents standing for a document file:
	// the file itself and documents equivalenced to products carrying it.
	DocumentReferencesOf(docFile domain.EntityHandle) ([]domain.EntityHandle, error)

	// ApplicationsOf returns the applied document references assigning document.
	ApplicationsOf(document domain.EntityHandle) ([]domain.EntityHandle, error)

	// ItemsOf returns the items an applied document reference applies to.
	ItemsOf(reference domain.EntityHandle) ([]domain.EntityHandle, error)

	// ShapeOf returns the product definition shape of a product definition.
	ShapeOf(productDefinition domain.EntityHandle) (*domain.EntityHandle, error)

	// RepresentationsOf returns the shape representations of a product definition shape.
	RepresentationsOf(shape domain.EntityHandle) ([]domain.EntityHandle, error)

	// ExternallyDefinedShapes returns shape representations whose definition
	// is delegated to docFile through an "external definition" property.
	ExternallyDefinedShapes(docFile domain.EntityHandle) ([]domain.EntityHandle, error)

	// ShapeRepresentations enumerates shape representation instances.
	ShapeRepresentations() []domain.EntityHandle

	// DefinitionOfRepresentation returns the product definition a shape
	// representation describes, or nil when it describes none.
	DefinitionOfRepresentation(rep domain.EntityHandle) (*domain.EntityHandle, error)

	// ProductOf returns the product master of a product definition.
	ProductOf(productDefinition domain.EntityHandle) (*Product, error)

	// RepresentationName returns the name attribute of a representation.
	RepresentationName(rep domain.EntityHandle) string

	// DocumentID returns the identifier of a document file.
	DocumentID(docFile domain.EntityHandle) string

	// RepresentationType returns the name of the document representation type
	// of a document file, or "" when none is assigned.
	RepresentationType(docFile domain.EntityHandle) (string, error)

	// Version returns the identifier assigned to a document file in the
	// "version" role, or "" when none is assigned.
	Version(docFile domain.EntityHandle) (string, error)
}
