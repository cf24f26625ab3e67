package domain

import (
	"path/filepath"
	"strings"
)

// MechanismURL is the mechanism tag for locations that name a file reachable
// through a path on the local or mounted filesystem.
const MechanismURL = "URL"

// DocumentSourceLocation describes where a referenced document file lives.
// Several locations may describe the same logical file.
type DocumentSourceLocation struct {
	// FileName is the file name, without any directory component.
	FileName string

	// Path is the directory holding the file. Nil when unknown.
	Path *string

	// Mechanism is the access mechanism tag (e.g., "URL"). Nil when unknown.
	Mechanism *string
}

// NewLocation builds a location from plain strings.
// Empty path or mechanism strings are stored as absent.
func NewLocation(fileName, path, mechanism string) DocumentSourceLocation {
	loc := DocumentSourceLocation{FileName: fileName}
	if path != "" {
		loc.Path = &path
	}
	if mechanism != "" {
		loc.Mechanism = &mechanism
	}
	return loc
}

// LocationFromPath derives a location from a filesystem path or file:// URL.
// The file name is the last path element, the path is its directory and the
// mechanism is MechanismURL.
func LocationFromPath(p string) DocumentSourceLocation {
	p = strings.TrimPrefix(p, "file://")
	dir, file := filepath.Split(filepath.Clean(p))
	dir = filepath.Clean(dir)
	return NewLocation(file, dir, MechanismURL)
}

// PathOr returns the path, or fallback when the path is absent or empty.
func (l DocumentSourceLocation) PathOr(fallback string) string {
	if l.Path == nil || *l.Path == "" {
		return fallback
	}
	return *l.Path
}

// MechanismOr returns the mechanism, or fallback when it is absent or empty.
func (l DocumentSourceLocation) MechanismOr(fallback string) string {
	if l.Mechanism == nil || *l.Mechanism == "" {
		return fallback
	}
	return *l.Mechanism
}

// FullPath joins the path (defaulting to ".") and the file name.
func (l DocumentSourceLocation) FullPath() string {
	return filepath.Join(l.PathOr("."), l.FileName)
}

// Extension returns the lower-cased file extension without the leading dot.
func (l DocumentSourceLocation) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(l.FileName), "."))
}

// Equal reports structural equality.
func (l DocumentSourceLocation) Equal(o DocumentSourceLocation) bool {
	return l.FileName == o.FileName &&
		optionalEqual(l.Path, o.Path) &&
		optionalEqual(l.Mechanism, o.Mechanism)
}

// String renders the location for logs and CLI output.
func (l DocumentSourceLocation) String() string {
	var b strings.Builder
	if m := l.MechanismOr(""); m != "" {
		b.WriteString(m)
		b.WriteString(":")
	}
	b.WriteString(l.FullPath())
	return b.String()
}

// Clone returns a deep copy so callers can adjust optional fields safely.
func (l DocumentSourceLocation) Clone() DocumentSourceLocation {
	c := DocumentSourceLocation{FileName: l.FileName}
	if l.Path != nil {
		p := *l.Path
		c.Path = &p
	}
	if l.Mechanism != nil {
		m := *l.Mechanism
		c.Mechanism = &m
	}
	return c
}

func optionalEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
