package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// Disposition is a policy decision for one location.
type Disposition int

const (
	// DispositionLoad means the location should be opened and decoded.
	DispositionLoad Disposition = iota

	// DispositionDefer means the location should be resolved on a later pass.
	DispositionDefer

	// DispositionDecline means the location is not handled by this resolver.
	DispositionDecline
)

// String returns the disposition name.
func (d Disposition) String() string {
	switch d {
	case DispositionLoad:
		return "load"
	case DispositionDefer:
		return "defer"
	case DispositionDecline:
		return "decline"
	default:
		return "unknown"
	}
}

// DispositionPolicy decides how referenced locations are resolved.
// Hosting applications substitute their own without touching the loader.
type DispositionPolicy interface {
	// Normalize fills gaps in a child location from its parent's location.
	Normalize(child, parent domain.DocumentSourceLocation) domain.DocumentSourceLocation

	// Disposition decides whether to load, defer or decline a location.
	Disposition(loc domain.DocumentSourceLocation) Disposition

	// OpenStream opens an accepted location. The caller closes the stream.
	OpenStream(ctx context.Context, loc domain.DocumentSourceLocation) (io.ReadCloser, error)
}
