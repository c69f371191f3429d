// Package keyring stores session tokens in the OS credential manager,
// falling back to another token store when no keyring service is reachable
// (headless machines, stripped-down containers).
package keyring

import (
	"github.com/zalando/go-keyring"
)

const service = "cred"

const (
	accountAccess  = "access_token"
	accountRefresh = "refresh_token"
)

// Fallback is the secondary token store used when the OS keyring fails.
type Fallback interface {
	AccessToken() (string, error)
	RefreshToken() (string, error)
	SetTokens(access, refresh string) error
	ClearTokens() error
}

type Store struct {
	fallback Fallback
}

func New(fallback Fallback) *Store {
	return &Store{fallback: fallback}
}

func (s *Store) AccessToken() (string, error)  { return s.get(accountAccess, s.fallback.AccessToken) }
func (s *Store) RefreshToken() (string, error) { return s.get(accountRefresh, s.fallback.RefreshToken) }

func (s *Store) get(account string, fromFallback func() (string, error)) (string, error) {
	v, err := keyring.Get(service, account)
	if err == nil && v != "" {
		return v, nil
	}
	return fromFallback()
}

func (s *Store) SetTokens(access, refresh string) error {
	if err := keyring.Set(service, accountAccess, access); err == nil {
		if err := keyring.Set(service, accountRefresh, refresh); err == nil {
			// keep the fallback clear of stale copies
			_ = s.fallback.ClearTokens()
			return nil
		}
	}
	return s.fallback.SetTokens(access, refresh)
}

func (s *Store) ClearTokens() error {
	_ = keyring.Delete(service, accountAccess)
	_ = keyring.Delete(service, accountRefresh)
	return s.fallback.ClearTokens()
}
