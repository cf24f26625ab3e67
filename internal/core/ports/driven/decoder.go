package driven

import (
	"context"
	"errors"
	"io"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// Decoder turns a character stream into decoded exchange content.
// Implementations accumulate decoded models into a shared Repository and are
// not required to be safe for concurrent use.
type Decoder interface {
	// Decode reads one exchange file. name is the canonical document name and
	// is used to name the resulting models.
	Decode(ctx context.Context, name string, stream io.Reader) (*domain.ExchangeStructure, error)
}

// DiagnosticError is implemented by decoder errors that carry detail such as
// a line number.
type DiagnosticError interface {
	error
	Diagnostic() string
}

// DiagnosticOf extracts decoder diagnostic detail from err, if any.
func DiagnosticOf(err error) string {
	var de DiagnosticError
	if errors.As(err, &de) {
		return de.Diagnostic()
	}
	return ""
}
