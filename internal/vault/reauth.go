package vault

import (
	"context"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

// Identity is the signed-in user as reported by the primary session provider.
type Identity struct {
	Email    string
	Provider models.Provider
}

// SessionProvider is the primary identity session the vault sits behind. The
// vault never manages sign-in or sign-up; it only reads the identity and asks
// for a fresh proof of it.
type SessionProvider interface {
	CurrentIdentity(ctx context.Context) (Identity, error)
	ReauthenticateWithPassword(ctx context.Context, email, password string) error
	ReauthenticateWithPopup(ctx context.Context) error
}

// Proof carries the user-supplied half of a re-authentication attempt.
// Password accounts need Password; federated accounts need nothing beyond
// completing the interactive popup.
type Proof struct {
	Password string
}

// ReauthGate re-proves the user's primary identity before a PIN reset is
// permitted. Success confirms the proof and nothing else: no token is granted
// and the result is never cached, so every reset attempt re-runs the gate.
type ReauthGate struct {
	provider SessionProvider
}

func NewReauthGate(provider SessionProvider) *ReauthGate {
	return &ReauthGate{provider: provider}
}

func (g *ReauthGate) Reauthenticate(ctx context.Context, proof Proof) error {
	id, err := g.provider.CurrentIdentity(ctx)
	if err != nil {
		return &ReauthError{Reason: "not signed in, please log in again", Cause: err}
	}
	switch id.Provider {
	case models.ProviderPassword:
		if id.Email == "" {
			return &ReauthError{Reason: "no email on record for this account"}
		}
		if err := g.provider.ReauthenticateWithPassword(ctx, id.Email, proof.Password); err != nil {
			return &ReauthError{Reason: "wrong password", Cause: err}
		}
	case models.ProviderFederated:
		if err := g.provider.ReauthenticateWithPopup(ctx); err != nil {
			return &ReauthError{Reason: "provider confirmation cancelled", Cause: err}
		}
	default:
		return &ReauthError{Reason: "unsupported authentication provider"}
	}
	return nil
}
