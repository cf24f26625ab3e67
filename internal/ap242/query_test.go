package ap242

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

const asm = "assembly.stp"

func assemblyView(t *testing.T) *SchemaInstance {
	t.Helper()
	repo := NewRepository()
	return openView(t, repo, asm+".TEMP", loadFixture(t, repo, asm))
}

func TestDocumentFiles(t *testing.T) {
	v := assemblyView(t)

	assert.Equal(t, []domain.EntityHandle{h(asm, 12), h(asm, 30), h(asm, 36)}, v.DocumentFiles())
	assert.Equal(t, "bracket.stp", v.DocumentID(h(asm, 12)))
	assert.Equal(t, "spec.stp", v.DocumentID(h(asm, 36)))
	assert.Equal(t, "geometry", v.DocumentKind(h(asm, 12)))
}

func TestFileLocations(t *testing.T) {
	v := assemblyView(t)

	tests := []struct {
		name    string
		docFile domain.EntityHandle
		want    []domain.DocumentSourceLocation
	}{
		{
			name:    "assigned id with source path, then source id only",
			docFile: h(asm, 12),
			want: []domain.DocumentSourceLocation{
				domain.NewLocation("bracket.stp", "/parts", "URL"),
				domain.NewLocation("bracket-mirror.stp", "", "FTP"),
			},
		},
		{
			name:    "fallback to document id",
			docFile: h(asm, 30),
			want:    []domain.DocumentSourceLocation{{FileName: "drawing.pdf"}},
		},
		{
			name:    "complex instance fallback",
			docFile: h(asm, 36),
			want:    []domain.DocumentSourceLocation{{FileName: "spec.stp"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.FileLocations(tt.docFile)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.True(t, tt.want[i].Equal(got[i]), "location %d: want %s, got %s", i, tt.want[i], got[i])
			}
		})
	}
}

func TestFileLocations_NotADocumentFile(t *testing.T) {
	v := assemblyView(t)

	_, err := v.FileLocations(h(asm, 3))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileLocations_NoID(t *testing.T) {
	repo := NewRepository()
	x := decodeInto(t, repo, "anon.stp", stepText(
		"#1=DOCUMENT_TYPE('geometry');",
		"#2=DOCUMENT_FILE('','','',#1,'','');",
	))
	v := openView(t, repo, "anon.stp.TEMP", x)

	_, err := v.FileLocations(h("anon.stp", 2))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentReferencesOf(t *testing.T) {
	v := assemblyView(t)

	docs, err := v.DocumentReferencesOf(h(asm, 12))
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityHandle{h(asm, 12)}, docs)

	docs, err = v.DocumentReferencesOf(h(asm, 30))
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityHandle{h(asm, 30), h(asm, 34)}, docs)
}

func TestDocumentApplications(t *testing.T) {
	v := assemblyView(t)

	refs, err := v.ApplicationsOf(h(asm, 12))
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityHandle{h(asm, 19)}, refs)

	items, err := v.ItemsOf(h(asm, 19))
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityHandle{h(asm, 6)}, items)

	_, err = v.ItemsOf(h(asm, 6))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShapeLookups(t *testing.T) {
	v := assemblyView(t)

	shape, err := v.ShapeOf(h(asm, 6))
	require.NoError(t, err)
	require.NotNil(t, shape)
	assert.Equal(t, h(asm, 7), *shape)

	reps, err := v.RepresentationsOf(*shape)
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityHandle{h(asm, 8)}, reps)
	assert.Equal(t, "bracket-shape", v.RepresentationName(h(asm, 8)))

	none, err := v.ShapeOf(h(asm, 33))
	require.NoError(t, err)
	assert.Nil(t, none)

	assert.Equal(t, []domain.EntityHandle{h(asm, 8)}, v.ShapeRepresentations())

	def, err := v.DefinitionOfRepresentation(h(asm, 8))
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, h(asm, 6), *def)
}

func TestExternallyDefinedShapes(t *testing.T) {
	v := assemblyView(t)

	reps, err := v.ExternallyDefinedShapes(h(asm, 12))
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityHandle{h(asm, 8)}, reps)

	reps, err = v.ExternallyDefinedShapes(h(asm, 30))
	require.NoError(t, err)
	assert.Empty(t, reps)

	file, err := v.DefiningDocumentFile(h(asm, 8))
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, h(asm, 12), *file)
}

func TestProductOf(t *testing.T) {
	v := assemblyView(t)

	p, err := v.ProductOf(h(asm, 6))
	require.NoError(t, err)
	assert.Equal(t, h(asm, 3), p.Handle)
	assert.Equal(t, "BRK-1", p.ID)
	assert.Equal(t, "Bracket", p.Name)

	// Subtype of product definition.
	p, err = v.ProductOf(h(asm, 33))
	require.NoError(t, err)
	assert.Equal(t, "DOC-1", p.ID)

	_, err = v.ProductOf(h(asm, 3))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductOf_SubtypeFormation(t *testing.T) {
	repo := NewRepository()
	v := openView(t, repo, "bracket.stp.DETAIL", loadFixture(t, repo, "bracket.stp"))

	assert.Equal(t, []domain.EntityHandle{h("bracket.stp", 8), h("bracket.stp", 11)}, v.ShapeRepresentations())

	def, err := v.DefinitionOfRepresentation(h("bracket.stp", 8))
	require.NoError(t, err)
	require.NotNil(t, def)

	p, err := v.ProductOf(*def)
	require.NoError(t, err)
	assert.Equal(t, "BRK-1", p.ID)

	def, err = v.DefinitionOfRepresentation(h("bracket.stp", 11))
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestDocumentProperties(t *testing.T) {
	v := assemblyView(t)

	rt, err := v.RepresentationType(h(asm, 12))
	require.NoError(t, err)
	assert.Equal(t, "digital", rt)

	ver, err := v.Version(h(asm, 12))
	require.NoError(t, err)
	assert.Equal(t, "3", ver)

	rt, err = v.RepresentationType(h(asm, 30))
	require.NoError(t, err)
	assert.Empty(t, rt)

	ver, err = v.Version(h(asm, 30))
	require.NoError(t, err)
	assert.Empty(t, ver)
}

func TestIntegrityErrors(t *testing.T) {
	repo := NewRepository()
	x := decodeInto(t, repo, "loose.stp", stepText(
		"#1=PRODUCT('P','P','',());",
		"#2=PRODUCT_DEFINITION_FORMATION('A','',#1);",
		"#3=PRODUCT_DEFINITION('d','',#2,$);",
		"#4=PRODUCT_DEFINITION_SHAPE('','',#3);",
		"#5=PRODUCT_DEFINITION_SHAPE('','',#3);",
		"#6=SHAPE_REPRESENTATION('s',(),$);",
		"#7=SHAPE_DEFINITION_REPRESENTATION(#4,#6);",
		"#8=PRODUCT('Q','Q','',());",
		"#9=PRODUCT_DEFINITION_FORMATION('A','',#8);",
		"#10=PRODUCT_DEFINITION('d','',#9,$);",
		"#11=PRODUCT_DEFINITION_SHAPE('','',#10);",
		"#12=SHAPE_DEFINITION_REPRESENTATION(#11,#6);",
		"#13=DOCUMENT_TYPE('geometry');",
		"#14=DOCUMENT_FILE('x.stp','','',#13,'','');",
		"#15=DOCUMENT_REPRESENTATION_TYPE('digital',#14);",
		"#16=DOCUMENT_REPRESENTATION_TYPE('physical',#14);",
		"#17=IDENTIFICATION_ROLE('version',$);",
		"#18=APPLIED_IDENTIFICATION_ASSIGNMENT('1',#17,(#14));",
		"#19=APPLIED_IDENTIFICATION_ASSIGNMENT('2',#17,(#14));",
	))
	v := openView(t, repo, "loose.stp.TEMP", x)

	tests := []struct {
		name     string
		lookup   func() error
		relation string
	}{
		{"shape of definition", func() error { _, err := v.ShapeOf(h("loose.stp", 3)); return err }, "product_definition_shape.definition"},
		{"definition of representation", func() error { _, err := v.DefinitionOfRepresentation(h("loose.stp", 6)); return err }, "shape_definition_representation.used_representation"},
		{"representation type", func() error { _, err := v.RepresentationType(h("loose.stp", 14)); return err }, "document_representation_type.represented_document"},
		{"version", func() error { _, err := v.Version(h("loose.stp", 14)); return err }, "applied_identification_assignment.items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lookup()
			require.Error(t, err)
			assert.True(t, domain.IsIntegrityError(err))

			var ie *domain.IntegrityError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.relation, ie.Relation)
			assert.Len(t, ie.Matches, 2)
		})
	}
}

func TestAtMostOne(t *testing.T) {
	subject := h("m", 1)

	got, err := atMostOne("r", subject, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = atMostOne("r", subject, []domain.EntityHandle{h("m", 2)})
	require.NoError(t, err)
	assert.Equal(t, h("m", 2), *got)

	_, err = atMostOne("r", subject, []domain.EntityHandle{h("m", 2), h("m", 3)})
	assert.ErrorContains(t, err, "multiple r for m#1")
}
