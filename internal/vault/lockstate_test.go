package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

func TestMountNoPinStartsUnlocked(t *testing.T) {
	pins := &fakePinBackend{}
	flag := &fakeFlag{}
	m := newTestMachine(pins, &fakeSession{}, flag)
	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateUnlocked {
		t.Fatalf("state: %s", m.State())
	}
	if m.CanLock() {
		t.Fatal("lock affordance must be disabled without a PIN")
	}
	if err := m.Lock(); err == nil {
		t.Fatal("lock without a PIN must fail")
	}
}

func TestMountStaleFlagWithoutPinStaysUnlocked(t *testing.T) {
	pins := &fakePinBackend{}
	flag := &fakeFlag{locked: true}
	m := newTestMachine(pins, &fakeSession{}, flag)
	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateUnlocked {
		t.Fatalf("state: %s", m.State())
	}
}

func TestMountWithPinStartsLocked(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	m := newTestMachine(pins, &fakeSession{}, &fakeFlag{locked: true})
	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateLocked {
		t.Fatalf("state: %s", m.State())
	}
}

func TestSubmitPinExactEqualityOnly(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	flag := &fakeFlag{locked: true}
	m := newTestMachine(pins, &fakeSession{}, flag)
	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, wrong := range []string{"1111", "123", "12345", " 1234", "1234 ", ""} {
		if err := m.SubmitPin(wrong); !errors.Is(err, ErrIncorrectPin) {
			t.Fatalf("submit %q: want ErrIncorrectPin, got %v", wrong, err)
		}
		if m.State() != StateLocked {
			t.Fatalf("state after %q: %s", wrong, m.State())
		}
	}

	if err := m.SubmitPin("1234"); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateUnlocked {
		t.Fatalf("state: %s", m.State())
	}
	if flag.Locked() {
		t.Fatal("flag should record unlocked")
	}
}

func TestSubmitPinOutsideLockedHasNoEffect(t *testing.T) {
	pins := &fakePinBackend{}
	m := newTestMachine(pins, &fakeSession{}, &fakeFlag{})
	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := m.SubmitPin("1234"); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateUnlocked {
		t.Fatalf("state: %s", m.State())
	}
}

func TestLockUnlockCycle(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	flag := &fakeFlag{locked: true}
	m := newTestMachine(pins, &fakeSession{}, flag)
	_ = m.Mount(context.Background())
	_ = m.SubmitPin("1234")
	if !m.CanLock() {
		t.Fatal("can lock once unlocked with a PIN")
	}
	if err := m.Lock(); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateLocked || !flag.Locked() {
		t.Fatalf("state %s, flag %v", m.State(), flag.Locked())
	}
}

func TestSetPinFirstTime(t *testing.T) {
	pins := &fakePinBackend{}
	m := newTestMachine(pins, &fakeSession{}, &fakeFlag{})
	_ = m.Mount(context.Background())

	var verr *ValidationError
	if err := m.SetPin(context.Background(), "", "12a4", "12a4"); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for malformed PIN, got %v", err)
	}
	if err := m.SetPin(context.Background(), "", "1234", "4321"); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for mismatch, got %v", err)
	}
	if pins.sets != 0 {
		t.Fatal("rejected candidates must not reach the store")
	}

	if err := m.SetPin(context.Background(), "", "1234", "1234"); err != nil {
		t.Fatal(err)
	}
	if !m.HasPin() || pins.setting.Pin != "1234" {
		t.Fatal("pin not stored")
	}
	if m.State() != StateUnlocked {
		t.Fatalf("first set must not lock, state: %s", m.State())
	}
}

func TestSetPinReplaceRequiresCurrent(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	m := newTestMachine(pins, &fakeSession{}, &fakeFlag{})
	_ = m.Mount(context.Background())
	_ = m.SubmitPin("1234")

	if err := m.SetPin(context.Background(), "0000", "5678", "5678"); !errors.Is(err, ErrIncorrectPin) {
		t.Fatalf("want ErrIncorrectPin, got %v", err)
	}
	if err := m.SetPin(context.Background(), "1234", "5678", "5678"); err != nil {
		t.Fatal(err)
	}
	if pins.setting.Pin != "5678" {
		t.Fatalf("stored pin: %q", pins.setting.Pin)
	}
}

func TestResetFlowHappyPath(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	sess := &fakeSession{identity: Identity{Email: "u@example.com", Provider: models.ProviderPassword}, password: "hunter2"}
	flag := &fakeFlag{locked: true}
	m := newTestMachine(pins, sess, flag)
	_ = m.Mount(context.Background())

	m.StartReset()
	if m.State() != StateReauthPending {
		t.Fatalf("state: %s", m.State())
	}

	// wrong password keeps the dialog open
	var rerr *ReauthError
	if err := m.Reauthenticate(context.Background(), Proof{Password: "nope"}); !errors.As(err, &rerr) {
		t.Fatalf("want ReauthError, got %v", err)
	}
	if m.State() != StateReauthPending {
		t.Fatalf("state: %s", m.State())
	}

	if err := m.Reauthenticate(context.Background(), Proof{Password: "hunter2"}); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateResetPending {
		t.Fatalf("state: %s", m.State())
	}

	if err := m.SubmitNewPin(context.Background(), "5678", "5678"); err != nil {
		t.Fatal(err)
	}
	if pins.setting.Pin != "5678" {
		t.Fatalf("stored pin: %q", pins.setting.Pin)
	}
	if m.State() != StateLocked {
		t.Fatalf("must re-unlock with the new PIN, state: %s", m.State())
	}
	if err := m.SubmitPin("1234"); !errors.Is(err, ErrIncorrectPin) {
		t.Fatal("old PIN must no longer unlock")
	}
	if err := m.SubmitPin("5678"); err != nil {
		t.Fatal(err)
	}
}

func TestResetPendingOnlyReachableThroughReauth(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	m := newTestMachine(pins, &fakeSession{identity: Identity{Provider: models.ProviderPassword, Email: "u@example.com"}, password: "pw"}, &fakeFlag{locked: true})
	_ = m.Mount(context.Background())

	// submitNewPin from Locked: no effect
	if err := m.SubmitNewPin(context.Background(), "5678", "5678"); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateLocked || pins.sets != 0 {
		t.Fatalf("state %s, sets %d", m.State(), pins.sets)
	}

	// submitNewPin from ReauthPending: no effect
	m.StartReset()
	if err := m.SubmitNewPin(context.Background(), "5678", "5678"); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateReauthPending || pins.sets != 0 {
		t.Fatalf("state %s, sets %d", m.State(), pins.sets)
	}
}

func TestResetValidationKeepsState(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	m := newTestMachine(pins, &fakeSession{identity: Identity{Provider: models.ProviderPassword, Email: "u@example.com"}, password: "pw"}, &fakeFlag{locked: true})
	_ = m.Mount(context.Background())
	m.StartReset()
	_ = m.Reauthenticate(context.Background(), Proof{Password: "pw"})

	var verr *ValidationError
	if err := m.SubmitNewPin(context.Background(), "56789", "56789"); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if err := m.SubmitNewPin(context.Background(), "5678", "8765"); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if m.State() != StateResetPending || pins.sets != 0 {
		t.Fatalf("state %s, sets %d", m.State(), pins.sets)
	}
}

func TestCancelReturnsToLocked(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	sess := &fakeSession{identity: Identity{Provider: models.ProviderPassword, Email: "u@example.com"}, password: "pw"}
	m := newTestMachine(pins, sess, &fakeFlag{locked: true})
	_ = m.Mount(context.Background())

	m.StartReset()
	m.Cancel()
	if m.State() != StateLocked {
		t.Fatalf("state: %s", m.State())
	}

	m.StartReset()
	_ = m.Reauthenticate(context.Background(), Proof{Password: "pw"})
	m.Cancel()
	if m.State() != StateLocked {
		t.Fatalf("state: %s", m.State())
	}
}

func TestReauthNotCachedBetweenResets(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	sess := &fakeSession{identity: Identity{Provider: models.ProviderPassword, Email: "u@example.com"}, password: "pw"}
	m := newTestMachine(pins, sess, &fakeFlag{locked: true})
	_ = m.Mount(context.Background())

	m.StartReset()
	_ = m.Reauthenticate(context.Background(), Proof{Password: "pw"})
	m.Cancel()

	// A fresh reset attempt must route through reauth again.
	m.StartReset()
	if m.State() != StateReauthPending {
		t.Fatalf("state: %s", m.State())
	}
	if err := m.SubmitNewPin(context.Background(), "5678", "5678"); err != nil || pins.sets != 0 {
		t.Fatal("reset must not proceed on a stale re-auth")
	}
}

func TestUnsupportedProvider(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	sess := &fakeSession{identity: Identity{Provider: "saml", Email: "u@example.com"}}
	m := newTestMachine(pins, sess, &fakeFlag{locked: true})
	_ = m.Mount(context.Background())
	m.StartReset()

	var rerr *ReauthError
	if err := m.Reauthenticate(context.Background(), Proof{}); !errors.As(err, &rerr) {
		t.Fatalf("want ReauthError, got %v", err)
	}
	if m.State() != StateReauthPending {
		t.Fatalf("state: %s", m.State())
	}
}

func TestFederatedPopup(t *testing.T) {
	pins := &fakePinBackend{setting: models.PinSetting{Pin: "1234"}, exists: true}
	sess := &fakeSession{identity: Identity{Provider: models.ProviderFederated}}
	m := newTestMachine(pins, sess, &fakeFlag{locked: true})
	_ = m.Mount(context.Background())
	m.StartReset()

	sess.popupErr = errors.New("popup closed")
	var rerr *ReauthError
	if err := m.Reauthenticate(context.Background(), Proof{}); !errors.As(err, &rerr) {
		t.Fatalf("want ReauthError, got %v", err)
	}

	sess.popupErr = nil
	if err := m.Reauthenticate(context.Background(), Proof{}); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateResetPending {
		t.Fatalf("state: %s", m.State())
	}
}

func TestMountStoreUnavailable(t *testing.T) {
	pins := &fakePinBackend{fetchEr: ErrStoreUnavailable}
	m := newTestMachine(pins, &fakeSession{}, &fakeFlag{})
	if err := m.Mount(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("want ErrStoreUnavailable, got %v", err)
	}
}
