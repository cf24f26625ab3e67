package domain

import "fmt"

// ReferenceNode is one document in the external reference graph.
// The loader owns every node; Parent is a lookup relation only.
type ReferenceNode struct {
	// Name is the canonical name, taken from the first candidate's file name.
	Name string

	// Locations are the candidate locations, most preferred first.
	// After a successful load only the winning location remains.
	Locations []DocumentSourceLocation

	// Origin identifies the document-file instance in the parent's model
	// that produced this edge. Nil for the root.
	Origin *EntityHandle

	// Parent is the node whose document referenced this one. Nil for the root.
	Parent *ReferenceNode

	// Depth is 0 for the root and parent depth + 1 otherwise.
	Depth int

	status Status
}

// NewRootNode creates the depth-0 node for the starting document.
func NewRootNode(start DocumentSourceLocation) *ReferenceNode {
	return &ReferenceNode{
		Name:      start.FileName,
		Locations: []DocumentSourceLocation{start},
		status:    Pending(),
	}
}

// NewChildNode creates a node discovered from parent.
// locations must already be normalised against the parent's location.
func NewChildNode(parent *ReferenceNode, origin EntityHandle, locations []DocumentSourceLocation) (*ReferenceNode, error) {
	if parent == nil || len(locations) == 0 {
		return nil, ErrInvalidInput
	}
	o := origin
	return &ReferenceNode{
		Name:      locations[0].FileName,
		Locations: locations,
		Origin:    &o,
		Parent:    parent,
		Depth:     parent.Depth + 1,
		status:    Pending(),
	}, nil
}

// Status returns the current status.
func (n *ReferenceNode) Status() Status {
	return n.status
}

// Content returns the decoded exchange structure when loaded.
func (n *ReferenceNode) Content() (*ExchangeStructure, bool) {
	return n.status.Content()
}

// PrimaryLocation returns the first candidate location.
func (n *ReferenceNode) PrimaryLocation() DocumentSourceLocation {
	if len(n.Locations) == 0 {
		return DocumentSourceLocation{FileName: n.Name}
	}
	return n.Locations[0]
}

// Transition moves the node to next.
// Only pending nodes may change, except that deferred nodes may return to pending.
func (n *ReferenceNode) Transition(next Status) error {
	from := n.status.Kind()
	switch {
	case from == StatusPending && next.Kind() != StatusPending:
	case from == StatusDeferred && next.Kind() == StatusPending:
	default:
		return fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidInput, n.Name, from, next.Kind())
	}
	n.status = next
	return nil
}

// String renders the node for logs.
func (n *ReferenceNode) String() string {
	return fmt.Sprintf("%s[depth=%d %s]", n.Name, n.Depth, n.status.Kind())
}
