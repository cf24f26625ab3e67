package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootNode(t *testing.T) {
	root := NewRootNode(NewLocation("assembly.stp", "/cad", MechanismURL))

	assert.Equal(t, "assembly.stp", root.Name)
	assert.Zero(t, root.Depth)
	assert.Nil(t, root.Parent)
	assert.Nil(t, root.Origin)
	assert.Equal(t, StatusPending, root.Status().Kind())
	assert.Equal(t, "assembly.stp[depth=0 pending]", root.String())
}

func TestNewChildNode(t *testing.T) {
	root := NewRootNode(NewLocation("assembly.stp", "/cad", MechanismURL))
	origin := EntityHandle{Model: "assembly.stp", ID: 12}
	locs := []DocumentSourceLocation{
		NewLocation("part.stp", "/cad", MechanismURL),
		NewLocation("part.stp", "ftp.example.com", "FTP"),
	}

	child, err := NewChildNode(root, origin, locs)
	require.NoError(t, err)

	assert.Equal(t, "part.stp", child.Name)
	assert.Equal(t, 1, child.Depth)
	assert.Same(t, root, child.Parent)
	assert.Equal(t, origin, *child.Origin)
	assert.True(t, child.PrimaryLocation().Equal(locs[0]))

	_, err = NewChildNode(nil, origin, locs)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = NewChildNode(root, origin, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReferenceNode_PrimaryLocationWithoutCandidates(t *testing.T) {
	n := &ReferenceNode{Name: "orphan.stp"}
	assert.Equal(t, "orphan.stp", n.PrimaryLocation().FileName)
}

func TestReferenceNode_Transition(t *testing.T) {
	tests := []struct {
		name    string
		from    []Status
		next    Status
		wantErr bool
	}{
		{"pending to loaded", nil, Loaded(&ExchangeStructure{}), false},
		{"pending to deferred", nil, Deferred(), false},
		{"pending to pending", nil, Pending(), true},
		{"deferred back to pending", []Status{Deferred()}, Pending(), false},
		{"deferred to loaded", []Status{Deferred()}, Loaded(&ExchangeStructure{}), true},
		{"loaded is final", []Status{Loaded(&ExchangeStructure{})}, Pending(), true},
		{"failed is final", []Status{Failed(ErrReferenceNotFound)}, Loaded(&ExchangeStructure{}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewRootNode(NewLocation("a.stp", "", ""))
			for _, s := range tt.from {
				require.NoError(t, n.Transition(s))
			}
			before := n.Status().Kind()

			err := n.Transition(tt.next)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Equal(t, before, n.Status().Kind())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next.Kind(), n.Status().Kind())
		})
	}
}
