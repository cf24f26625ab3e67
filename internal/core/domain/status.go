package domain

// StatusKind enumerates the states of a reference node.
type StatusKind int

const (
	// StatusPending means the node has not been attempted in the current pass.
	StatusPending StatusKind = iota

	// StatusDeferred means the policy asked to resolve the node later.
	StatusDeferred

	// StatusLoaded means the node's document was decoded.
	StatusLoaded

	// StatusForeignReference means no candidate location is handled by this resolver.
	StatusForeignReference

	// StatusFailed means opening or decoding the document failed.
	StatusFailed

	// StatusCancelled means resolution stopped before the node was attempted.
	StatusCancelled
)

// String returns the status name.
func (k StatusKind) String() string {
	switch k {
	case StatusPending:
		return "pending"
	case StatusDeferred:
		return "deferred"
	case StatusLoaded:
		return "loaded"
	case StatusForeignReference:
		return "foreign"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseStatusKind converts a status name back to its kind.
func ParseStatusKind(s string) (StatusKind, bool) {
	for k := StatusPending; k <= StatusCancelled; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return StatusPending, false
}

// IsTerminal reports whether no later pass changes the status.
func (k StatusKind) IsTerminal() bool {
	switch k {
	case StatusLoaded, StatusForeignReference, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Status is the tagged status of a reference node.
// Content is set only for StatusLoaded, Reason only for StatusFailed.
type Status struct {
	kind    StatusKind
	content *ExchangeStructure
	reason  error
}

// Pending returns the initial status.
func Pending() Status { return Status{kind: StatusPending} }

// Deferred returns the deferred status.
func Deferred() Status { return Status{kind: StatusDeferred} }

// ForeignReference returns the foreign-reference status.
func ForeignReference() Status { return Status{kind: StatusForeignReference} }

// Cancelled returns the cancelled status.
func Cancelled() Status { return Status{kind: StatusCancelled} }

// Loaded returns a loaded status carrying the decoded content.
func Loaded(content *ExchangeStructure) Status {
	return Status{kind: StatusLoaded, content: content}
}

// Failed returns a failed status carrying the reason.
func Failed(reason error) Status {
	return Status{kind: StatusFailed, reason: reason}
}

// Kind returns the status kind.
func (s Status) Kind() StatusKind { return s.kind }

// Content returns the decoded content when loaded.
func (s Status) Content() (*ExchangeStructure, bool) {
	return s.content, s.kind == StatusLoaded
}

// Reason returns the failure reason, or nil unless failed.
func (s Status) Reason() error {
	if s.kind != StatusFailed {
		return nil
	}
	return s.reason
}

// String renders the status, including the failure reason.
func (s Status) String() string {
	if s.kind == StatusFailed && s.reason != nil {
		return s.kind.String() + ": " + s.reason.Error()
	}
	return s.kind.String()
}
