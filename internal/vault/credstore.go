package vault

import (
	"context"
	"sort"
	"strings"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

// CredentialBackend is the remote per-owner credential collection. The
// backend reports transport failures as ErrStoreUnavailable and missing ids
// as ErrNotFound.
type CredentialBackend interface {
	List(ctx context.Context) ([]models.Credential, error)
	Create(ctx context.Context, f models.CredentialFields) (models.Credential, error)
	Update(ctx context.Context, id string, f models.CredentialFields) (models.Credential, error)
	Delete(ctx context.Context, id string) error
}

// ValidateFields applies the client-side required-field checks before any
// network dispatch.
func ValidateFields(f models.CredentialFields) error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Reason: "title is required"}
	}
	if strings.TrimSpace(f.Username) == "" {
		return &ValidationError{Reason: "username is required"}
	}
	if f.Password == "" {
		return &ValidationError{Reason: "password is required"}
	}
	return nil
}

// CredentialStore performs owner-scoped CRUD against the remote collection.
type CredentialStore struct {
	backend CredentialBackend
}

func NewCredentialStore(backend CredentialBackend) *CredentialStore {
	return &CredentialStore{backend: backend}
}

// List fetches the full collection eagerly, newest first.
func (s *CredentialStore) List(ctx context.Context) ([]models.Credential, error) {
	items, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *CredentialStore) Create(ctx context.Context, f models.CredentialFields) (models.Credential, error) {
	if err := ValidateFields(f); err != nil {
		return models.Credential{}, err
	}
	return s.backend.Create(ctx, trimmed(f))
}

// Update is a full replace of title/username/password/url.
func (s *CredentialStore) Update(ctx context.Context, id string, f models.CredentialFields) (models.Credential, error) {
	if err := ValidateFields(f); err != nil {
		return models.Credential{}, err
	}
	return s.backend.Update(ctx, id, trimmed(f))
}

// Delete is irreversible; there is no soft-delete.
func (s *CredentialStore) Delete(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, id)
}

func trimmed(f models.CredentialFields) models.CredentialFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Username = strings.TrimSpace(f.Username)
	f.Password = strings.TrimSpace(f.Password)
	f.URL = strings.TrimSpace(f.URL)
	return f
}

// Search filters by case-insensitive substring match over title, username and
// url. An empty query returns the collection unmodified. Pure: no persistence
// effect, input slice untouched.
func Search(items []models.Credential, query string) []models.Credential {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	var out []models.Credential
	for _, c := range items {
		if strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Username), q) ||
			strings.Contains(strings.ToLower(c.URL), q) {
			out = append(out, c)
		}
	}
	return out
}

// RevealState tracks which credentials currently show their plaintext
// password. Transient UI state only; every item defaults to hidden.
type RevealState struct {
	visible map[string]bool
}

func NewRevealState() *RevealState {
	return &RevealState{visible: make(map[string]bool)}
}

func (r *RevealState) Visible(id string) bool { return r.visible[id] }

// Toggle flips exactly one entry, leaving the rest untouched.
func (r *RevealState) Toggle(id string) {
	r.visible[id] = !r.visible[id]
}

// SetAll overwrites every entry with the same value (the bulk
// "reveal all / hide all" control).
func (r *RevealState) SetAll(items []models.Credential, visible bool) {
	for _, c := range items {
		r.visible[c.ID] = visible
	}
}

// Reset drops all reveal flags back to hidden.
func (r *RevealState) Reset() {
	r.visible = make(map[string]bool)
}
