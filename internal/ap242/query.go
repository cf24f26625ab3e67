package ap242

import (
	"fmt"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

// Attribute positions of the entity types the lookups read.
const (
	attrProductID   = 0
	attrProductName = 1

	attrFormationOfProduct = 2

	attrDefinitionFormation     = 2
	attrDefinitionDocumentation = 4

	attrPropertyName       = 0
	attrPropertyDefinition = 2

	attrRepDefinition = 0
	attrRepUsed       = 1

	attrRepresentationName = 0

	attrDocumentID   = 0
	attrDocumentKind = 3

	attrDocumentTypeData = 0

	attrDocRepTypeName     = 0
	attrDocRepTypeDocument = 1

	attrEquivRelatingDocument = 2
	attrEquivRelatedProduct   = 3

	attrReferenceDocument = 0
	attrReferenceItems    = 2

	attrExtAssignedID = 0
	attrExtRole       = 1
	attrExtSource     = 2
	attrExtItems      = 3

	attrIDAssignedID = 0
	attrIDRole       = 1
	attrIDItems      = 2

	attrRoleName = 0

	attrSourceID = 0
)

// DocumentFiles enumerates document-file instances.
func (s *SchemaInstance) DocumentFiles() []domain.EntityHandle {
	return s.extentOf(typeDocumentFile)
}

// DocumentID returns the identifier of a document file.
func (s *SchemaInstance) DocumentID(docFile domain.EntityHandle) string {
	return s.stringAttr(docFile, typeDocument, attrDocumentID)
}

// DocumentKind returns the product data type of a document file's kind.
func (s *SchemaInstance) DocumentKind(docFile domain.EntityHandle) string {
	kind, ok := s.refAttr(docFile, typeDocument, attrDocumentKind)
	if !ok {
		return ""
	}
	return s.stringAttr(kind, typeDocumentType, attrDocumentTypeData)
}

// FileLocations returns the locations declared for a document file by its
// external identification assignments, in file order. An assignment with an
// empty assigned id names the file by the source id alone; otherwise the
// assigned id is the file name and the source id its directory. The role name
// is the access mechanism. Without assignments the document id is the file name.
func (s *SchemaInstance) FileLocations(docFile domain.EntityHandle) ([]domain.DocumentSourceLocation, error) {
	if !s.is(docFile, typeDocumentFile) {
		return nil, fmt.Errorf("%w: %s is not a document file", domain.ErrNotFound, docFile)
	}

	var locs []domain.DocumentSourceLocation
	for _, a := range s.usedIn(docFile, typeExternalIDAssignment, attrExtItems) {
		assignedID := s.stringAttr(a, typeExternalIDAssignment, attrExtAssignedID)

		var mechanism, sourceID string
		if role, ok := s.refAttr(a, typeExternalIDAssignment, attrExtRole); ok {
			mechanism = s.stringAttr(role, typeIdentificationRole, attrRoleName)
		}
		if src, ok := s.refAttr(a, typeExternalIDAssignment, attrExtSource); ok {
			sourceID = s.stringAttr(src, typeExternalSource, attrSourceID)
		}

		if assignedID == "" {
			locs = append(locs, domain.NewLocation(sourceID, "", mechanism))
		} else {
			locs = append(locs, domain.NewLocation(assignedID, sourceID, mechanism))
		}
	}
	if len(locs) > 0 {
		return locs, nil
	}

	id := s.DocumentID(docFile)
	if id == "" {
		return nil, fmt.Errorf("%w: document file %s has no id", domain.ErrInvalidInput, docFile)
	}
	return []domain.DocumentSourceLocation{{FileName: id}}, nil
}

// DocumentReferencesOf returns the file itself and the documents made
// equivalent to a product, formation or definition that lists the file
// among its documentation ids.
func (s *SchemaInstance) DocumentReferencesOf(docFile domain.EntityHandle) ([]domain.EntityHandle, error) {
	if !s.is(docFile, typeDocumentFile) {
		return nil, fmt.Errorf("%w: %s is not a document file", domain.ErrNotFound, docFile)
	}

	seen := make(map[domain.EntityHandle]bool)
	docs := appendUnique(nil, seen, docFile)
	for _, def := range s.usedIn(docFile, typeDefinitionWithDocuments, attrDefinitionDocumentation) {
		related := []domain.EntityHandle{def}
		if formation, ok := s.refAttr(def, typeDefinition, attrDefinitionFormation); ok {
			related = append(related, formation)
			if product, ok := s.refAttr(formation, typeFormation, attrFormationOfProduct); ok {
				related = append(related, product)
			}
		}
		for _, r := range related {
			for _, equiv := range s.usedIn(r, typeDocumentProductEquiv, attrEquivRelatedProduct) {
				if doc, ok := s.refAttr(equiv, typeDocumentProductEquiv, attrEquivRelatingDocument); ok {
					docs = appendUnique(docs, seen, doc)
				}
			}
		}
	}
	return docs, nil
}

// ApplicationsOf returns the applied document references assigning document.
func (s *SchemaInstance) ApplicationsOf(document domain.EntityHandle) ([]domain.EntityHandle, error) {
	return s.usedIn(document, typeAppliedDocumentReference, attrReferenceDocument), nil
}

// ItemsOf returns the items an applied document reference applies to.
func (s *SchemaInstance) ItemsOf(reference domain.EntityHandle) ([]domain.EntityHandle, error) {
	if !s.is(reference, typeAppliedDocumentReference) {
		return nil, fmt.Errorf("%w: %s is not an applied document reference", domain.ErrNotFound, reference)
	}
	return s.refsAttr(reference, typeAppliedDocumentReference, attrReferenceItems), nil
}

// ShapeOf returns the product definition shape of a product definition.
func (s *SchemaInstance) ShapeOf(productDefinition domain.EntityHandle) (*domain.EntityHandle, error) {
	return atMostOne("product_definition_shape.definition", productDefinition,
		s.usedIn(productDefinition, typeDefinitionShape, attrPropertyDefinition))
}

// RepresentationsOf returns the shape representations of a product definition shape.
func (s *SchemaInstance) RepresentationsOf(shape domain.EntityHandle) ([]domain.EntityHandle, error) {
	seen := make(map[domain.EntityHandle]bool)
	var reps []domain.EntityHandle
	for _, sdr := range s.usedIn(shape, typeShapeDefinitionRep, attrRepDefinition) {
		if rep, ok := s.refAttr(sdr, typePropertyRepresentation, attrRepUsed); ok && s.is(rep, typeShapeRepresentation) {
			reps = appendUnique(reps, seen, rep)
		}
	}
	return reps, nil
}

// ExternallyDefinedShapes returns the shape representations whose
// "external definition" property is defined by one of the document
// references of docFile.
func (s *SchemaInstance) ExternallyDefinedShapes(docFile domain.EntityHandle) ([]domain.EntityHandle, error) {
	docs, err := s.DocumentReferencesOf(docFile)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.EntityHandle]bool)
	var reps []domain.EntityHandle
	for _, doc := range docs {
		for _, prop := range s.usedIn(doc, typePropertyDefinition, attrPropertyDefinition) {
			if s.stringAttr(prop, typePropertyDefinition, attrPropertyName) != externalDefinition {
				continue
			}
			for _, pdr := range s.usedIn(prop, typePropertyRepresentation, attrRepDefinition) {
				if rep, ok := s.refAttr(pdr, typePropertyRepresentation, attrRepUsed); ok && s.is(rep, typeShapeRepresentation) {
					reps = appendUnique(reps, seen, rep)
				}
			}
		}
	}
	return reps, nil
}

// DefiningDocumentFile returns the document file an "external definition"
// property ties to rep, or nil when the shape is defined locally.
func (s *SchemaInstance) DefiningDocumentFile(rep domain.EntityHandle) (*domain.EntityHandle, error) {
	var files []domain.EntityHandle
	seen := make(map[domain.EntityHandle]bool)
	for _, pdr := range s.usedIn(rep, typePropertyRepresentation, attrRepUsed) {
		prop, ok := s.refAttr(pdr, typePropertyRepresentation, attrRepDefinition)
		if !ok || s.stringAttr(prop, typePropertyDefinition, attrPropertyName) != externalDefinition {
			continue
		}
		if doc, ok := s.refAttr(prop, typePropertyDefinition, attrPropertyDefinition); ok && s.is(doc, typeDocumentFile) {
			files = appendUnique(files, seen, doc)
		}
	}
	return atMostOne("property_definition_representation.used_representation", rep, files)
}

// ShapeRepresentations enumerates shape representation instances.
func (s *SchemaInstance) ShapeRepresentations() []domain.EntityHandle {
	return s.extentOf(typeShapeRepresentation)
}

// DefinitionOfRepresentation returns the product definition whose shape rep
// represents, or nil when it represents none.
func (s *SchemaInstance) DefinitionOfRepresentation(rep domain.EntityHandle) (*domain.EntityHandle, error) {
	seen := make(map[domain.EntityHandle]bool)
	var defs []domain.EntityHandle
	for _, sdr := range s.usedIn(rep, typeShapeDefinitionRep, attrRepUsed) {
		shape, ok := s.refAttr(sdr, typePropertyRepresentation, attrRepDefinition)
		if !ok {
			continue
		}
		def, ok := s.refAttr(shape, typePropertyDefinition, attrPropertyDefinition)
		if ok && s.is(def, typeDefinition) {
			defs = appendUnique(defs, seen, def)
		}
	}
	return atMostOne("shape_definition_representation.used_representation", rep, defs)
}

// ProductOf returns the product master of a product definition.
func (s *SchemaInstance) ProductOf(productDefinition domain.EntityHandle) (*driven.Product, error) {
	formation, ok := s.refAttr(productDefinition, typeDefinition, attrDefinitionFormation)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a product definition", domain.ErrNotFound, productDefinition)
	}
	product, ok := s.refAttr(formation, typeFormation, attrFormationOfProduct)
	if !ok || !s.is(product, typeProduct) {
		return nil, fmt.Errorf("%w: formation %s has no product", domain.ErrNotFound, formation)
	}
	return &driven.Product{
		Handle: product,
		ID:     s.stringAttr(product, typeProduct, attrProductID),
		Name:   s.stringAttr(product, typeProduct, attrProductName),
	}, nil
}

// RepresentationName returns the name attribute of a representation.
func (s *SchemaInstance) RepresentationName(rep domain.EntityHandle) string {
	return s.stringAttr(rep, typeRepresentation, attrRepresentationName)
}

// RepresentationType returns the name of the document representation type
// of a document file.
func (s *SchemaInstance) RepresentationType(docFile domain.EntityHandle) (string, error) {
	h, err := atMostOne("document_representation_type.represented_document", docFile,
		s.usedIn(docFile, typeDocumentRepresentation, attrDocRepTypeDocument))
	if err != nil || h == nil {
		return "", err
	}
	return s.stringAttr(*h, typeDocumentRepresentation, attrDocRepTypeName), nil
}

// Version returns the identifier assigned to a document file in the "version" role.
func (s *SchemaInstance) Version(docFile domain.EntityHandle) (string, error) {
	var versions []domain.EntityHandle
	for _, a := range s.usedIn(docFile, typeIDAssignment, attrIDItems) {
		role, ok := s.refAttr(a, typeIDAssignment, attrIDRole)
		if ok && s.stringAttr(role, typeIdentificationRole, attrRoleName) == versionRole {
			versions = append(versions, a)
		}
	}
	h, err := atMostOne("applied_identification_assignment.items", docFile, versions)
	if err != nil || h == nil {
		return "", err
	}
	return s.stringAttr(*h, typeIDAssignment, attrIDAssignedID), nil
}
