package vault

import "context"

// State is the lock sub-state of the vault. The machine cycles between
// Unlocked and Locked for the life of the session; there is no terminal state.
type State string

const (
	StateUnlocked      State = "unlocked"
	StateLocked        State = "locked"
	StateReauthPending State = "reauth_pending"
	StateResetPending  State = "reset_pending"
)

// LockFlag is the local ephemeral "isLocked" boolean. It is advisory only:
// a convenience so a reload re-locks the vault, never a trust boundary, so
// write failures are deliberately not surfaced.
type LockFlag interface {
	Locked() bool
	SetLocked(bool)
}

// LockStateMachine serializes the three modal sub-flows of the locker:
// unlock, re-authentication, and PIN reset. It owns the cached stored PIN
// and is the only component allowed to compare candidates against it.
type LockStateMachine struct {
	state  State
	pin    string
	hasPin bool

	pins *PinStore
	gate *ReauthGate
	flag LockFlag
}

func NewLockStateMachine(pins *PinStore, gate *ReauthGate, flag LockFlag) *LockStateMachine {
	return &LockStateMachine{state: StateUnlocked, pins: pins, gate: gate, flag: flag}
}

// Mount computes the initial state: Locked when a prior session recorded
// "locked" or a PIN exists, otherwise Unlocked. Without a PIN the vault can
// never start Locked, since there is nothing to unlock it with.
func (m *LockStateMachine) Mount(ctx context.Context) error {
	setting, ok, err := m.pins.Fetch(ctx)
	if err != nil {
		return err
	}
	m.hasPin = ok
	m.pin = setting.Pin
	locked := m.flag.Locked() || m.hasPin
	if !m.hasPin {
		// A stale flag with no PIN cannot lock: nothing would unlock it.
		locked = false
	}
	if locked {
		m.state = StateLocked
	} else {
		m.state = StateUnlocked
	}
	return nil
}

func (m *LockStateMachine) State() State { return m.state }

func (m *LockStateMachine) HasPin() bool { return m.hasPin }

// CanLock reports whether the Lock affordance is enabled. You cannot lock
// with nothing to unlock with.
func (m *LockStateMachine) CanLock() bool {
	return m.hasPin && m.state == StateUnlocked
}

// Lock is the explicit, user-triggered lock action.
func (m *LockStateMachine) Lock() error {
	if !m.hasPin {
		return &ValidationError{Reason: "set a PIN before locking"}
	}
	if m.state != StateUnlocked {
		return nil
	}
	m.state = StateLocked
	m.flag.SetLocked(true)
	return nil
}

// SubmitPin unlocks iff the candidate equals the stored PIN exactly; a
// mismatch returns ErrIncorrectPin and stays Locked. Outside Locked the call
// has no effect.
func (m *LockStateMachine) SubmitPin(candidate string) error {
	if m.state != StateLocked {
		return nil
	}
	if candidate != m.pin {
		return ErrIncorrectPin
	}
	m.state = StateUnlocked
	m.flag.SetLocked(false)
	return nil
}

// SetPin handles the verified Set-PIN flow while Unlocked: the first set
// needs only a valid new PIN and confirmation; replacing an existing PIN also
// requires the current one.
func (m *LockStateMachine) SetPin(ctx context.Context, current, pin, confirm string) error {
	if m.state != StateUnlocked {
		return nil
	}
	if m.hasPin && current != m.pin {
		return ErrIncorrectPin
	}
	if err := ValidatePin(pin); err != nil {
		return err
	}
	if pin != confirm {
		return &ValidationError{Reason: "PINs do not match"}
	}
	if err := m.pins.Set(ctx, pin); err != nil {
		return err
	}
	m.pin = pin
	m.hasPin = true
	return nil
}

// StartReset opens the forgot-PIN flow. Reset always routes through the
// reauth gate; ResetPending is never reachable from Locked directly.
func (m *LockStateMachine) StartReset() {
	if m.state == StateLocked {
		m.state = StateReauthPending
	}
}

// Reauthenticate runs the gate. Success advances to ResetPending; failure
// surfaces a ReauthError and stays in ReauthPending with the dialog open.
func (m *LockStateMachine) Reauthenticate(ctx context.Context, proof Proof) error {
	if m.state != StateReauthPending {
		return nil
	}
	if err := m.gate.Reauthenticate(ctx, proof); err != nil {
		return err
	}
	m.state = StateResetPending
	return nil
}

// SubmitNewPin completes the reset. On success the PIN document is
// overwritten and the vault returns to Locked: the user must re-unlock with
// the new PIN. Outside ResetPending the call has no effect.
func (m *LockStateMachine) SubmitNewPin(ctx context.Context, pin, confirm string) error {
	if m.state != StateResetPending {
		return nil
	}
	if err := ValidatePin(pin); err != nil {
		return err
	}
	if pin != confirm {
		return &ValidationError{Reason: "PINs do not match"}
	}
	if err := m.pins.Set(ctx, pin); err != nil {
		return err
	}
	m.pin = pin
	m.hasPin = true
	m.state = StateLocked
	m.flag.SetLocked(true)
	return nil
}

// Cancel abandons the reauth or reset dialog and returns to Locked.
func (m *LockStateMachine) Cancel() {
	if m.state == StateReauthPending || m.state == StateResetPending {
		m.state = StateLocked
	}
}
