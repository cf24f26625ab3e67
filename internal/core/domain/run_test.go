package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOf(t *testing.T) {
	root := NewRootNode(NewLocation("assembly.stp", "/cad", MechanismURL))
	model := NewModel("assembly.stp", "AP242")
	model.Add(&Entity{ID: 1, Parts: []EntityPart{{Type: "DOCUMENT_TYPE"}}})
	model.Add(&Entity{ID: 2, Parts: []EntityPart{{Type: "DOCUMENT_FILE"}}})
	require.NoError(t, root.Transition(Loaded(&ExchangeStructure{Models: []*Model{model}})))

	child, err := NewChildNode(root, EntityHandle{Model: "assembly.stp", ID: 2},
		[]DocumentSourceLocation{NewLocation("part.stp", "/cad", MechanismURL)})
	require.NoError(t, err)
	require.NoError(t, child.Transition(Failed(ErrReferenceNotFound)))

	rec := RecordOf(root)
	assert.Equal(t, "assembly.stp", rec.Name)
	assert.Empty(t, rec.Parent)
	assert.Equal(t, StatusLoaded, rec.Status)
	assert.Equal(t, 2, rec.Entities)

	rec = RecordOf(child)
	assert.Equal(t, "assembly.stp", rec.Parent)
	assert.Equal(t, 1, rec.Depth)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "reference not found", rec.Reason)
	assert.Zero(t, rec.Entities)
}

func TestRun_Counts(t *testing.T) {
	run := &Run{Nodes: []NodeRecord{
		{Status: StatusLoaded},
		{Status: StatusLoaded},
		{Status: StatusDeferred},
		{Status: StatusForeignReference},
	}}

	assert.Equal(t, map[StatusKind]int{
		StatusLoaded:           2,
		StatusDeferred:         1,
		StatusForeignReference: 1,
	}, run.Counts())
	assert.Empty(t, (&Run{}).Counts())
}
