package policies

import (
	"errors"
	"io/fs"
	"os"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/logger"
)

// Ensure AwaitMissing implements the interface.
var _ driven.DispositionPolicy = (*AwaitMissing)(nil)

// AwaitMissing defers locations the wrapped policy would load when their
// file does not exist yet. A retry loads them once the file appears.
type AwaitMissing struct {
	driven.DispositionPolicy
	stat func(name string) (fs.FileInfo, error)
}

// NewAwaitMissing wraps inner.
func NewAwaitMissing(inner driven.DispositionPolicy) *AwaitMissing {
	return &AwaitMissing{DispositionPolicy: inner, stat: os.Stat}
}

// Disposition turns load into defer for absent files.
func (a *AwaitMissing) Disposition(loc domain.DocumentSourceLocation) driven.Disposition {
	d := a.DispositionPolicy.Disposition(loc)
	if d != driven.DispositionLoad {
		return d
	}
	if _, err := a.stat(loc.FullPath()); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Waiting for %s", loc.FullPath())
		return driven.DispositionDefer
	}
	return d
}
