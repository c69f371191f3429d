package models

import "time"

// Provider identifies how a user proves their primary identity.
type Provider string

const (
	ProviderPassword  Provider = "password"
	ProviderFederated Provider = "federated"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Provider  Provider  `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Credential is a stored username/password pair. Passwords are kept as
// plain values; the locker is a convenience gate, not an encrypted store.
type Credential struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialFields is the user-editable portion of a Credential. An update
// replaces all four fields at once.
type CredentialFields struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
}

// PinSetting is the single per-owner locker PIN document. Overwritten in
// place on set/reset, no history.
type PinSetting struct {
	Pin       string    `json:"pin"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServerStatus is the outcome of the most recent health check.
type ServerStatus string

const (
	ServerStatusUnknown ServerStatus = "unknown"
	ServerStatusOnline  ServerStatus = "online"
	ServerStatusOffline ServerStatus = "offline"
	ServerStatusError   ServerStatus = "error"
)

// Server is a monitored endpoint on the health dashboard.
type Server struct {
	ID             string       `json:"id"`
	OwnerID        string       `json:"owner_id"`
	Title          string       `json:"title"`
	URL            string       `json:"url"`
	Status         ServerStatus `json:"status"`
	ResponseTimeMs int64        `json:"response_time_ms"`
	LastChecked    time.Time    `json:"last_checked"`
	LastError      string       `json:"last_error,omitempty"`
}
