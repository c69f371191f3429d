package vault

import (
	"context"
	"regexp"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// ValidatePin enforces the 4-ASCII-digit rule applied before any PIN write.
func ValidatePin(pin string) error {
	if !pinPattern.MatchString(pin) {
		return &ValidationError{Reason: "PIN must be exactly 4 digits"}
	}
	return nil
}

// PinBackend is the remote document holding the single per-owner PIN.
// Fetch reports absence through ok=false, not through an error.
type PinBackend interface {
	FetchPin(ctx context.Context) (setting models.PinSetting, ok bool, err error)
	SetPin(ctx context.Context, pin string) error
}

// PinStore validates candidates before letting the backend overwrite the
// single PIN document. Overwrites are unversioned; last write wins.
type PinStore struct {
	backend PinBackend
}

func NewPinStore(backend PinBackend) *PinStore {
	return &PinStore{backend: backend}
}

func (s *PinStore) Fetch(ctx context.Context) (models.PinSetting, bool, error) {
	return s.backend.FetchPin(ctx)
}

func (s *PinStore) Set(ctx context.Context, candidate string) error {
	if err := ValidatePin(candidate); err != nil {
		return err
	}
	return s.backend.SetPin(ctx, candidate)
}
