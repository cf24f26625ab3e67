package domain

import "time"

// Run is the persisted summary of one resolution.
type Run struct {
	// ID is the unique identifier for the run.
	ID string

	// Root is the starting location.
	Root string

	StartedAt  time.Time
	FinishedAt time.Time

	// Nodes holds one record per node in creation order.
	Nodes []NodeRecord

	// Linkages holds discovered linkages between loaded nodes.
	Linkages []LinkageRecord
}

// NodeRecord is the persisted view of a reference node.
type NodeRecord struct {
	Name     string
	Parent   string
	Depth    int
	Status   StatusKind
	Reason   string
	Location string
	Entities int

	// DocumentType and Version describe the referencing document file.
	DocumentType string
	Version      string
}

// DocumentInfo is what the referencing model states about a document file.
type DocumentInfo struct {
	// Type is the document representation type (e.g., "digital").
	Type string

	// Version is the identifier assigned in the "version" role.
	Version string
}

// RecordOf captures a node for persistence.
func RecordOf(n *ReferenceNode) NodeRecord {
	rec := NodeRecord{
		Name:     n.Name,
		Depth:    n.Depth,
		Status:   n.Status().Kind(),
		Location: n.PrimaryLocation().String(),
	}
	if n.Parent != nil {
		rec.Parent = n.Parent.Name
	}
	if reason := n.Status().Reason(); reason != nil {
		rec.Reason = reason.Error()
	}
	if content, ok := n.Content(); ok {
		rec.Entities = content.EntityCount()
	}
	return rec
}

// Counts tallies node records by status.
func (r *Run) Counts() map[StatusKind]int {
	counts := make(map[StatusKind]int)
	for _, n := range r.Nodes {
		counts[n.Status]++
	}
	return counts
}
