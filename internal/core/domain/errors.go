package domain

import "errors"

// Session errors. None of these are shown to the user; they resolve to a
// navigation decision.
var (
	ErrSessionAbsent  = errors.New("no session")
	ErrSessionCorrupt = errors.New("session record corrupt")
	// ErrSessionInvalid means the authority rejected the credential (401/403).
	ErrSessionInvalid = errors.New("session rejected by authority")
	ErrInvalidRole    = errors.New("invalid role")
)

// Workflow errors surfaced to the caller.
var (
	// ErrStateConflict means the target is no longer in the expected
	// precondition state. The caller must re-fetch before retrying.
	ErrStateConflict = errors.New("state conflict")
	// ErrTransient covers network failures, timeouts and 5xx responses.
	ErrTransient = errors.New("transient failure")
	// ErrCapabilityDenied is returned when a mutating call is made without
	// the required role. No action is taken.
	ErrCapabilityDenied = errors.New("capability denied")

	ErrOrderMismatch     = errors.New("order does not match placement membership")
	ErrEntityNotFound    = errors.New("entity not found")
	ErrBannerNotFound    = errors.New("banner not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidKind       = errors.New("invalid entity kind")
	ErrInvalidPlacement  = errors.New("invalid placement key")
)

// FailureKind classifies an error for user-facing handling.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureConflict         FailureKind = "conflict"
	FailureTransient        FailureKind = "transient"
	FailureCapabilityDenied FailureKind = "capability_denied"
	FailureSessionInvalid   FailureKind = "session_invalid"
	FailureInvalid          FailureKind = "invalid"
	FailureUnknown          FailureKind = "unknown"
)

// Classify maps err onto the failure taxonomy.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrSessionInvalid), errors.Is(err, ErrSessionAbsent):
		return FailureSessionInvalid
	case errors.Is(err, ErrCapabilityDenied):
		return FailureCapabilityDenied
	case errors.Is(err, ErrStateConflict), errors.Is(err, ErrEntityNotFound), errors.Is(err, ErrBannerNotFound):
		return FailureConflict
	case errors.Is(err, ErrTransient):
		return FailureTransient
	case errors.Is(err, ErrInvalidKind), errors.Is(err, ErrInvalidPlacement),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrOrderMismatch):
		return FailureInvalid
	}
	return FailureUnknown
}

// Retryable reports whether the caller may retry the same request as-is.
func (k FailureKind) Retryable() bool { return k == FailureTransient }
