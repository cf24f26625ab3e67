package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent resolution failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrReferenceNotFound indicates a referenced document could not be opened.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrDecoder indicates the decoder rejected a document.
	ErrDecoder = errors.New("decoder error")

	// ErrUnsupportedSchema indicates a document conforms to an unrecognised schema.
	ErrUnsupportedSchema = errors.New("unsupported schema")

	// ErrNotLoaded indicates an operation needs a loaded reference node.
	ErrNotLoaded = errors.New("reference not loaded")

	// ErrNotLinked indicates two nodes are not connected by a document reference.
	ErrNotLinked = errors.New("references not linked")

	// ErrCancelled indicates resolution stopped before a node was attempted.
	ErrCancelled = errors.New("resolution cancelled")

	// View Errors.

	// ErrReadOnly indicates a write to a schema instance marked read-only.
	ErrReadOnly = errors.New("schema instance is read-only")

	// ErrClosed indicates use of a schema instance after disposal.
	ErrClosed = errors.New("schema instance closed")
)

// LoadErrorKind classifies why a node failed to load.
type LoadErrorKind int

const (
	// LoadErrorReferenceNotFound means the stream could not be opened.
	LoadErrorReferenceNotFound LoadErrorKind = iota

	// LoadErrorDecoder means the decoder rejected the content.
	LoadErrorDecoder
)

// String returns the kind name.
func (k LoadErrorKind) String() string {
	switch k {
	case LoadErrorReferenceNotFound:
		return "reference not found"
	case LoadErrorDecoder:
		return "decoder error"
	default:
		return "unknown"
	}
}

// LoadError is the failure reason recorded on a node.
type LoadError struct {
	Kind LoadErrorKind

	// Location is the candidate that was being loaded.
	Location DocumentSourceLocation

	// Diagnostic is optional decoder detail (line, token).
	Diagnostic string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Location)
	if e.Diagnostic != "" {
		msg += " (" + e.Diagnostic + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the sentinel for the kind and the underlying cause.
func (e *LoadError) Unwrap() []error {
	sentinel := ErrReferenceNotFound
	if e.Kind == LoadErrorDecoder {
		sentinel = ErrDecoder
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// IntegrityError reports an at-most-one relationship matched more than once.
type IntegrityError struct {
	// Relation names the violated relationship (e.g., "product_definition_shape.definition").
	Relation string

	// Subject is the instance the lookup started from.
	Subject EntityHandle

	// Matches are the offending instances.
	Matches []EntityHandle
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("multiple %s for %s (%d matches)", e.Relation, e.Subject, len(e.Matches))
}

// IsIntegrityError reports whether err carries an IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
