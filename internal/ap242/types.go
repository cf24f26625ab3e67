package ap242

// Entity type names used by the lookups.
const (
	typeProduct                  = "PRODUCT"
	typeFormation                = "PRODUCT_DEFINITION_FORMATION"
	typeDefinition               = "PRODUCT_DEFINITION"
	typeDefinitionWithDocuments  = "PRODUCT_DEFINITION_WITH_ASSOCIATED_DOCUMENTS"
	typeFormationWithSource      = "PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE"
	typeDefinitionShape          = "PRODUCT_DEFINITION_SHAPE"
	typePropertyDefinition       = "PROPERTY_DEFINITION"
	typePropertyRepresentation   = "PROPERTY_DEFINITION_REPRESENTATION"
	typeShapeDefinitionRep       = "SHAPE_DEFINITION_REPRESENTATION"
	typeRepresentation           = "REPRESENTATION"
	typeShapeRepresentation      = "SHAPE_REPRESENTATION"
	typeDocument                 = "DOCUMENT"
	typeDocumentFile             = "DOCUMENT_FILE"
	typeDocumentType             = "DOCUMENT_TYPE"
	typeDocumentRepresentation   = "DOCUMENT_REPRESENTATION_TYPE"
	typeDocumentProductEquiv     = "DOCUMENT_PRODUCT_EQUIVALENCE"
	typeAppliedDocumentReference = "APPLIED_DOCUMENT_REFERENCE"
	typeExternalIDAssignment     = "APPLIED_EXTERNAL_IDENTIFICATION_ASSIGNMENT"
	typeIDAssignment             = "APPLIED_IDENTIFICATION_ASSIGNMENT"
	typeIdentificationRole       = "IDENTIFICATION_ROLE"
	typeExternalSource           = "EXTERNAL_SOURCE"
)

// Property and role names fixed by the recommended practices.
const (
	externalDefinition = "external definition"
	versionRole        = "version"
)

// directSupertypes lists the supertypes of the subtypes the lookups must see
// through. Simple records of a subtype carry the supertype attributes first.
var directSupertypes = map[string][]string{
	typeDocumentFile:            {typeDocument, "CHARACTERIZED_OBJECT"},
	typeDefinitionWithDocuments: {typeDefinition},
	typeDefinitionShape:         {typePropertyDefinition},
	typeShapeDefinitionRep:      {typePropertyRepresentation},
	typeDocumentProductEquiv:    {"DOCUMENT_PRODUCT_ASSOCIATION"},
	typeShapeRepresentation:     {typeRepresentation},
	typeFormationWithSource:     {typeFormation},
}

// shapeRepresentationSubtypes are the shape representation leaf types found in practice.
var shapeRepresentationSubtypes = []string{
	"ADVANCED_BREP_SHAPE_REPRESENTATION",
	"FACETED_BREP_SHAPE_REPRESENTATION",
	"MANIFOLD_SURFACE_SHAPE_REPRESENTATION",
	"GEOMETRICALLY_BOUNDED_SURFACE_SHAPE_REPRESENTATION",
	"GEOMETRICALLY_BOUNDED_WIREFRAME_SHAPE_REPRESENTATION",
	"EDGE_BASED_WIREFRAME_SHAPE_REPRESENTATION",
	"SHELL_BASED_WIREFRAME_SHAPE_REPRESENTATION",
	"TESSELLATED_SHAPE_REPRESENTATION",
	"CSG_SHAPE_REPRESENTATION",
	"SHAPE_REPRESENTATION_WITH_PARAMETERS",
}

func init() {
	for _, t := range shapeRepresentationSubtypes {
		directSupertypes[t] = []string{typeShapeRepresentation}
	}
	supertypes = closeSupertypes(directSupertypes)
}

// supertypes is the transitive closure of directSupertypes.
var supertypes map[string]map[string]bool

func closeSupertypes(direct map[string][]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(direct))
	var visit func(t string, into map[string]bool)
	visit = func(t string, into map[string]bool) {
		for _, s := range direct[t] {
			if !into[s] {
				into[s] = true
				visit(s, into)
			}
		}
	}
	for t := range direct {
		set := make(map[string]bool)
		visit(t, set)
		out[t] = set
	}
	return out
}

// isA reports whether typeName is super or one of its subtypes.
func isA(typeName, super string) bool {
	return typeName == super || supertypes[typeName][super]
}
