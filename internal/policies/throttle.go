package policies

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

// Ensure Throttle implements the interface.
var _ driven.DispositionPolicy = (*Throttle)(nil)

// Throttle limits how often the wrapped policy opens streams.
type Throttle struct {
	driven.DispositionPolicy
	limiter *rate.Limiter
}

// NewThrottle wraps inner with a token bucket of perSecond opens and burst.
// A non-positive rate disables the limit.
func NewThrottle(inner driven.DispositionPolicy, perSecond float64, burst int) *Throttle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		DispositionPolicy: inner,
		limiter:           rate.NewLimiter(limit, burst),
	}
}

// OpenStream waits for a token, then opens through the wrapped policy.
func (t *Throttle) OpenStream(ctx context.Context, loc domain.DocumentSourceLocation) (io.ReadCloser, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			// The next token is due after the deadline.
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, fmt.Errorf("waiting to open %s: %w", loc.FullPath(), err)
	}
	return t.DispositionPolicy.OpenStream(ctx, loc)
}
