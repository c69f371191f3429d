package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

// In-memory fakes for the remote collaborators.

type fakePinBackend struct {
	setting models.PinSetting
	exists  bool
	fetchEr error
	setErr  error
	sets    int
}

func (f *fakePinBackend) FetchPin(context.Context) (models.PinSetting, bool, error) {
	if f.fetchEr != nil {
		return models.PinSetting{}, false, f.fetchEr
	}
	return f.setting, f.exists, nil
}

func (f *fakePinBackend) SetPin(_ context.Context, pin string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setting = models.PinSetting{Pin: pin, UpdatedAt: time.Now()}
	f.exists = true
	f.sets++
	return nil
}

type fakeCredBackend struct {
	items  []models.Credential
	nextID int
	listEr error
	// onDelete runs inside Delete, before the item is removed. Used to
	// exercise re-entrancy guards.
	onDelete func()
	lists    int
}

func (f *fakeCredBackend) List(context.Context) ([]models.Credential, error) {
	f.lists++
	if f.listEr != nil {
		return nil, f.listEr
	}
	out := make([]models.Credential, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCredBackend) Create(_ context.Context, fields models.CredentialFields) (models.Credential, error) {
	f.nextID++
	c := models.Credential{
		ID:        fmt.Sprintf("id-%d", f.nextID),
		OwnerID:   "owner",
		Title:     fields.Title,
		Username:  fields.Username,
		Password:  fields.Password,
		URL:       fields.URL,
		CreatedAt: time.Now().Add(time.Duration(f.nextID) * time.Millisecond),
	}
	c.UpdatedAt = c.CreatedAt
	f.items = append(f.items, c)
	return c, nil
}

func (f *fakeCredBackend) Update(_ context.Context, id string, fields models.CredentialFields) (models.Credential, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Title = fields.Title
			f.items[i].Username = fields.Username
			f.items[i].Password = fields.Password
			f.items[i].URL = fields.URL
			f.items[i].UpdatedAt = f.items[i].UpdatedAt.Add(time.Millisecond)
			return f.items[i], nil
		}
	}
	return models.Credential{}, ErrNotFound
}

func (f *fakeCredBackend) Delete(_ context.Context, id string) error {
	if f.onDelete != nil {
		f.onDelete()
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type fakeSession struct {
	identity Identity
	identErr error
	password string
	popupErr error
}

func (f *fakeSession) CurrentIdentity(context.Context) (Identity, error) {
	return f.identity, f.identErr
}

func (f *fakeSession) ReauthenticateWithPassword(_ context.Context, _, password string) error {
	if password != f.password {
		return fmt.Errorf("wrong password")
	}
	return nil
}

func (f *fakeSession) ReauthenticateWithPopup(context.Context) error {
	return f.popupErr
}

type fakeFlag struct {
	locked bool
	writes int
}

func (f *fakeFlag) Locked() bool { return f.locked }

func (f *fakeFlag) SetLocked(v bool) {
	f.locked = v
	f.writes++
}

type fakeClipboard struct {
	last string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.last = text
	return nil
}

func newTestMachine(pins *fakePinBackend, sess *fakeSession, flag *fakeFlag) *LockStateMachine {
	return NewLockStateMachine(NewPinStore(pins), NewReauthGate(sess), flag)
}

func newTestView(pins *fakePinBackend, creds *fakeCredBackend, sess *fakeSession, flag *fakeFlag, clip *fakeClipboard) *VaultView {
	return NewVaultView(newTestMachine(pins, sess, flag), NewCredentialStore(creds), clip)
}
