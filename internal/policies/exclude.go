package policies

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/logger"
)

// Ensure Exclude implements the interface.
var _ driven.DispositionPolicy = (*Exclude)(nil)

// Exclude declines locations whose full path or file name matches a glob.
// Patterns use doublestar syntax, so "**" crosses directories.
type Exclude struct {
	driven.DispositionPolicy
	patterns []string
}

// NewExclude wraps inner. Invalid patterns are rejected.
func NewExclude(inner driven.DispositionPolicy, patterns ...string) (*Exclude, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: bad exclude pattern %q", domain.ErrInvalidInput, p)
		}
	}
	return &Exclude{DispositionPolicy: inner, patterns: patterns}, nil
}

// Disposition declines excluded locations and defers to the wrapped policy otherwise.
func (e *Exclude) Disposition(loc domain.DocumentSourceLocation) driven.Disposition {
	if pattern, ok := e.match(loc); ok {
		logger.Debug("Excluding %s (matches %q)", loc, pattern)
		return driven.DispositionDecline
	}
	return e.DispositionPolicy.Disposition(loc)
}

func (e *Exclude) match(loc domain.DocumentSourceLocation) (string, bool) {
	full := filepath.ToSlash(loc.FullPath())
	for _, p := range e.patterns {
		// Patterns were validated, so Match cannot fail.
		if ok, _ := doublestar.Match(p, full); ok {
			return p, true
		}
		if ok, _ := doublestar.Match(p, loc.FileName); ok {
			return p, true
		}
	}
	return "", false
}
