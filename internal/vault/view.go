package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

// Clipboard is the system clipboard sink used by copy-to-clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// Action names used for per-action in-flight guards.
const (
	actionMount     = "mount"
	actionSubmitPin = "submit_pin"
	actionReauth    = "reauth"
	actionResetPin  = "reset_pin"
	actionSetPin    = "set_pin"
	actionRefresh   = "refresh"
	actionCreate    = "create"
	actionUpdate    = "update"
	actionDelete    = "delete"
)

// DefaultTimeout bounds every remote call made through the view, so a request
// that never resolves surfaces ErrStoreUnavailable instead of pinning the UI
// in a loading state.
const DefaultTimeout = 10 * time.Second

// VaultView composes the lock state machine and the credential store. It owns
// the lock state for the lifetime of the mounted session and enforces the one
// rule everything else hangs off: credentials are fetched and rendered only
// while Unlocked.
type VaultView struct {
	machine *LockStateMachine
	creds   *CredentialStore
	clip    Clipboard
	timeout time.Duration

	items    []models.Credential
	reveal   *RevealState
	inflight map[string]bool
}

func NewVaultView(machine *LockStateMachine, creds *CredentialStore, clip Clipboard) *VaultView {
	return &VaultView{
		machine:  machine,
		creds:    creds,
		clip:     clip,
		timeout:  DefaultTimeout,
		reveal:   NewRevealState(),
		inflight: make(map[string]bool),
	}
}

// SetTimeout overrides the per-call deadline. Zero disables it.
func (v *VaultView) SetTimeout(d time.Duration) { v.timeout = d }

func (v *VaultView) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, v.timeout)
}

// begin registers an in-flight action; a second dispatch of the same action
// while one is outstanding is ignored rather than issued twice.
func (v *VaultView) begin(action string) error {
	if v.inflight[action] {
		return ErrBusy
	}
	v.inflight[action] = true
	return nil
}

func (v *VaultView) end(action string) { v.inflight[action] = false }

// Mount initializes the lock state from the PIN document and the advisory
// flag, and fetches credentials when the session starts Unlocked.
func (v *VaultView) Mount(ctx context.Context) error {
	if err := v.begin(actionMount); err != nil {
		return err
	}
	defer v.end(actionMount)
	cctx, cancel := v.callCtx(ctx)
	defer cancel()
	if err := v.machine.Mount(cctx); err != nil {
		return err
	}
	if v.machine.State() == StateUnlocked {
		return v.refresh(ctx)
	}
	return nil
}

func (v *VaultView) State() State { return v.machine.State() }

func (v *VaultView) HasPin() bool { return v.machine.HasPin() }

func (v *VaultView) CanLock() bool { return v.machine.CanLock() }

// Items returns the cached credential list, and only while Unlocked: in any
// other state previously fetched plaintext must not be legible.
func (v *VaultView) Items() []models.Credential {
	if v.machine.State() != StateUnlocked {
		return nil
	}
	return v.items
}

// Search filters the cached list; it never touches the network.
func (v *VaultView) Search(query string) []models.Credential {
	return Search(v.Items(), query)
}

// Lock obscures everything: the cached list and all reveal flags are dropped
// so no sensitive value stays legible behind the lock.
func (v *VaultView) Lock() error {
	if err := v.machine.Lock(); err != nil {
		return err
	}
	v.items = nil
	v.reveal.Reset()
	return nil
}

// SubmitPin attempts an unlock and, on success, fetches the collection.
func (v *VaultView) SubmitPin(ctx context.Context, candidate string) error {
	if err := v.begin(actionSubmitPin); err != nil {
		return err
	}
	defer v.end(actionSubmitPin)
	if err := v.machine.SubmitPin(candidate); err != nil {
		return err
	}
	if v.machine.State() == StateUnlocked {
		return v.refresh(ctx)
	}
	return nil
}

func (v *VaultView) StartReset() { v.machine.StartReset() }

func (v *VaultView) Cancel() { v.machine.Cancel() }

func (v *VaultView) Reauthenticate(ctx context.Context, proof Proof) error {
	if err := v.begin(actionReauth); err != nil {
		return err
	}
	defer v.end(actionReauth)
	cctx, cancel := v.callCtx(ctx)
	defer cancel()
	return v.machine.Reauthenticate(cctx, proof)
}

func (v *VaultView) SubmitNewPin(ctx context.Context, pin, confirm string) error {
	if err := v.begin(actionResetPin); err != nil {
		return err
	}
	defer v.end(actionResetPin)
	cctx, cancel := v.callCtx(ctx)
	defer cancel()
	return v.machine.SubmitNewPin(cctx, pin, confirm)
}

func (v *VaultView) SetPin(ctx context.Context, current, pin, confirm string) error {
	if err := v.begin(actionSetPin); err != nil {
		return err
	}
	defer v.end(actionSetPin)
	cctx, cancel := v.callCtx(ctx)
	defer cancel()
	return v.machine.SetPin(cctx, current, pin, confirm)
}

// Refresh re-fetches the collection. A no-op unless Unlocked.
func (v *VaultView) Refresh(ctx context.Context) error {
	if err := v.begin(actionRefresh); err != nil {
		return err
	}
	defer v.end(actionRefresh)
	return v.refresh(ctx)
}

func (v *VaultView) refresh(ctx context.Context) error {
	if v.machine.State() != StateUnlocked {
		return nil
	}
	cctx, cancel := v.callCtx(ctx)
	defer cancel()
	items, err := v.creds.List(cctx)
	if err != nil {
		return err
	}
	v.items = items
	return nil
}

func (v *VaultView) Create(ctx context.Context, f models.CredentialFields) (models.Credential, error) {
	if v.machine.State() != StateUnlocked {
		return models.Credential{}, &ValidationError{Reason: "vault is locked"}
	}
	if err := v.begin(actionCreate); err != nil {
		return models.Credential{}, err
	}
	defer v.end(actionCreate)
	cctx, cancel := v.callCtx(ctx)
	defer cancel()
	c, err := v.creds.Create(cctx, f)
	if err != nil {
		return models.Credential{}, err
	}
	return c, v.refresh(ctx)
}

func (v *VaultView) Update(ctx context.Context, id string, f models.CredentialFields) (models.Credential, error) {
	if v.machine.State() != StateUnlocked {
		return models.Credential{}, &ValidationError{Reason: "vault is locked"}
	}
	if err := v.begin(actionUpdate); err != nil {
		return models.Credential{}, err
	}
	defer v.end(actionUpdate)
	cctx, cancel := v.callCtx(ctx)
	defer cancel()
	c, err := v.creds.Update(cctx, id, f)
	if err != nil {
		return models.Credential{}, err
	}
	return c, v.refresh(ctx)
}

// Delete leaves the item in the cached list when the call fails, so the user
// can retry against unchanged state.
func (v *VaultView) Delete(ctx context.Context, id string) error {
	if v.machine.State() != StateUnlocked {
		return &ValidationError{Reason: "vault is locked"}
	}
	if err := v.begin(actionDelete); err != nil {
		return err
	}
	defer v.end(actionDelete)
	cctx, cancel := v.callCtx(ctx)
	defer cancel()
	if err := v.creds.Delete(cctx, id); err != nil {
		return err
	}
	return v.refresh(ctx)
}

func (v *VaultView) Revealed(id string) bool { return v.reveal.Visible(id) }

func (v *VaultView) ToggleReveal(id string) {
	if v.machine.State() != StateUnlocked {
		return
	}
	v.reveal.Toggle(id)
}

func (v *VaultView) RevealAll(visible bool) {
	if v.machine.State() != StateUnlocked {
		return
	}
	v.reveal.SetAll(v.items, visible)
}

// Copy writes one field of one credential to the clipboard. A pure
// pass-through: no entity is altered.
func (v *VaultView) Copy(id, field string) error {
	if v.machine.State() != StateUnlocked {
		return &ValidationError{Reason: "vault is locked"}
	}
	for _, c := range v.items {
		if c.ID != id {
			continue
		}
		var text string
		switch field {
		case "username":
			text = c.Username
		case "password":
			text = c.Password
		case "url":
			text = c.URL
		default:
			return &ValidationError{Reason: fmt.Sprintf("unknown field %q", field)}
		}
		return v.clip.WriteAll(text)
	}
	return ErrNotFound
}
