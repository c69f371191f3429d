package vault

import "errors"

// Every failure in the locker is recoverable: control always returns to a
// well-defined state with a message the UI can show inline.
var (
	// ErrIncorrectPin is returned by SubmitPin on mismatch. The vault stays
	// Locked and the caller is expected to clear the PIN input.
	ErrIncorrectPin = errors.New("incorrect PIN")

	// ErrStoreUnavailable wraps transport or auth failures talking to the
	// remote store. The triggering UI state is left unchanged for retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned for update/delete of a nonexistent record.
	ErrNotFound = errors.New("not found")

	// ErrBusy means a duplicate dispatch was ignored while the same action
	// is still in flight.
	ErrBusy = errors.New("operation already in progress")
)

// ValidationError reports an empty required field, a malformed PIN, or a
// mismatched PIN confirmation. It is reported inline at the originating form
// and never causes a state transition.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ReauthError reports a failed identity re-proof: wrong password, cancelled
// popup, or an unsupported provider. The reauth dialog stays open.
type ReauthError struct {
	Reason string
	Cause  error
}

func (e *ReauthError) Error() string { return e.Reason }

func (e *ReauthError) Unwrap() error { return e.Cause }
