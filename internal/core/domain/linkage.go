package domain

import "sort"

// ShapeKey identifies a shape representation across independently decoded files.
// Entity identity does not survive across files, so matching uses names and ids.
type ShapeKey struct {
	RepresentationName string
	ProductName        string
	ProductID          string
}

// LinkageRecord pairs a shape representation in a master document with its
// counterpart in a detail document.
type LinkageRecord struct {
	Master EntityHandle
	Detail EntityHandle
	Key    ShapeKey
}

// normalised orders the pair so that the record is unordered for set purposes.
func (r LinkageRecord) normalised() LinkageRecord {
	if r.Detail.Less(r.Master) {
		r.Master, r.Detail = r.Detail, r.Master
	}
	return r
}

// Same reports whether two records denote the same unordered pair.
func (r LinkageRecord) Same(o LinkageRecord) bool {
	a, b := r.normalised(), o.normalised()
	return a.Master == b.Master && a.Detail == b.Detail
}

// LinkageSet is a duplicate-free collection of linkage records.
type LinkageSet struct {
	index   map[[2]EntityHandle]struct{}
	records []LinkageRecord
}

// NewLinkageSet creates an empty set.
func NewLinkageSet() *LinkageSet {
	return &LinkageSet{index: make(map[[2]EntityHandle]struct{})}
}

// Add inserts a record. Returns false if the pair was already present.
func (s *LinkageSet) Add(r LinkageRecord) bool {
	n := r.normalised()
	key := [2]EntityHandle{n.Master, n.Detail}
	if _, exists := s.index[key]; exists {
		return false
	}
	s.index[key] = struct{}{}
	s.records = append(s.records, r)
	return true
}

// Len returns the number of records.
func (s *LinkageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a sorted copy of the records.
func (s *LinkageSet) Records() []LinkageRecord {
	if s == nil {
		return nil
	}
	out := make([]LinkageRecord, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Master != out[j].Master {
			return out[i].Master.Less(out[j].Master)
		}
		return out[i].Detail.Less(out[j].Detail)
	})
	return out
}
