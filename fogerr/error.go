// Package fogerr provides the tagged Ok|Err(kind, detail) result shape used
// at every public boundary in this module, modeled on lnwire's CodedError.
package fogerr

import "fmt"

// Kind is a stable identifier for an error category. Kinds are compared by
// callers with errors.Is / Kind equality; Detail is diagnostic-only and must
// never contain secret material (spec §7).
type Kind string

const (
	// Protocol errors: drop + count, never surface upstream, no retry.
	KindBadMAC        Kind = "bad_mac"
	KindReplay        Kind = "replay"
	KindMalformed     Kind = "malformed_frame"
	KindInvalidPath   Kind = "invalid_path"
	KindTooManyHops   Kind = "too_many_hops"

	// Resource-exhaustion errors: refuse, caller may retry with backoff.
	KindQueueFull         Kind = "queue_full"
	KindInsufficientCap   Kind = "insufficient_capacity"
	KindNoFeasibleNode    Kind = "no_feasible_node"

	// Transient I/O errors.
	KindTransmitFailed Kind = "transmit_failed"
	KindHealthTimeout  Kind = "health_timeout"

	// Dependency errors: propagate to caller of the higher-level operation.
	KindCriticalStartFailed Kind = "critical_start_failed"
	KindDependencyMissing   Kind = "dependency_missing"

	// Fatal errors: refuse to start, process exits non-zero.
	KindCyclicDependency   Kind = "cyclic_dependency"
	KindPersistenceCorrupt Kind = "persistence_corrupt"
)

// Error is the concrete error type carried across every public boundary.
type Error struct {
	Kind   Kind
	Detail string
}

// New constructs an Error with the given kind and a formatted detail string.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is reports whether target is a *Error with the same Kind, so callers can
// use errors.Is(err, fogerr.New(fogerr.KindReplay, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Of reports whether err is a *Error of the given kind.
func Of(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
