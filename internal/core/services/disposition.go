package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

// Ensure DefaultPolicy implements the interface.
var _ driven.DispositionPolicy = (*DefaultPolicy)(nil)

// DefaultPolicy loads filesystem locations with a recognised exchange-file
// extension and declines everything else.
type DefaultPolicy struct {
	mechanism  string
	extensions map[string]struct{}
}

// NewDefaultPolicy creates the default policy.
// With no extensions, domain.DefaultExtensions are recognised.
func NewDefaultPolicy(mechanism string, extensions ...string) *DefaultPolicy {
	if mechanism == "" {
		mechanism = domain.MechanismURL
	}
	if len(extensions) == 0 {
		extensions = domain.DefaultExtensions
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &DefaultPolicy{mechanism: mechanism, extensions: set}
}

// Normalize fills the child's missing path and mechanism from the parent.
func (p *DefaultPolicy) Normalize(child, parent domain.DocumentSourceLocation) domain.DocumentSourceLocation {
	result := child.Clone()
	if result.PathOr("") == "" && parent.Path != nil {
		path := *parent.Path
		result.Path = &path
	}
	if result.MechanismOr("") == "" && parent.Mechanism != nil {
		mechanism := *parent.Mechanism
		result.Mechanism = &mechanism
	}
	return result
}

// Disposition loads only the configured mechanism with a recognised extension.
func (p *DefaultPolicy) Disposition(loc domain.DocumentSourceLocation) driven.Disposition {
	if !strings.EqualFold(loc.MechanismOr(""), p.mechanism) {
		return driven.DispositionDecline
	}
	if _, ok := p.extensions[loc.Extension()]; !ok {
		return driven.DispositionDecline
	}
	return driven.DispositionLoad
}

// OpenStream opens the file at the location's full path.
func (p *DefaultPolicy) OpenStream(_ context.Context, loc domain.DocumentSourceLocation) (io.ReadCloser, error) {
	f, err := os.Open(loc.FullPath())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", loc.FullPath(), err)
	}
	return f, nil
}
