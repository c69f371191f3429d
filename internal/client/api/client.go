package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
	"github.com/firstindiacredit-Git/cred/internal/vault"
)

// TokenStore persists the session tokens between invocations.
type TokenStore interface {
	AccessToken() (string, error)
	RefreshToken() (string, error)
	SetTokens(access, refresh string) error
	ClearTokens() error
}

// Client is a typed HTTP client for the cred server. It doubles as the
// vault's remote collaborators: it satisfies vault.PinBackend,
// vault.CredentialBackend and vault.SessionProvider, translating HTTP
// failures into the vault error taxonomy.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

func New(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// do performs an authenticated request, retrying once through the refresh
// endpoint on 401.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := c.doOnce(ctx, method, path, body, out, true)
	var ae *apiError
	if ok := asAPIError(err, &ae); ok && ae.Status == http.StatusUnauthorized {
		if rerr := c.refreshSession(ctx); rerr == nil {
			err = c.doOnce(ctx, method, path, body, out, true)
		}
	}
	return translate(err)
}

// doPublic performs an unauthenticated request.
func (c *Client) doPublic(ctx context.Context, method, path string, body, out any) error {
	return translate(c.doOnce(ctx, method, path, body, out, false))
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any, auth bool) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token, err := c.tokens.AccessToken()
		if err != nil || token == "" {
			return &apiError{Status: http.StatusUnauthorized, Message: "not logged in"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &apiError{Status: resp.StatusCode, Message: e.Error}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) refreshSession(ctx context.Context) error {
	refresh, err := c.tokens.RefreshToken()
	if err != nil || refresh == "" {
		return fmt.Errorf("no refresh token")
	}
	var tokens models.TokenResponse
	if err := c.doOnce(ctx, http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": refresh}, &tokens, false); err != nil {
		return err
	}
	return c.tokens.SetTokens(tokens.AccessToken, tokens.RefreshToken)
}

func asAPIError(err error, target **apiError) bool {
	ae, ok := err.(*apiError)
	if ok {
		*target = ae
	}
	return ok
}

// translate maps HTTP outcomes onto the vault error taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*apiError); ok {
		switch ae.Status {
		case http.StatusNotFound:
			return vault.ErrNotFound
		case http.StatusBadRequest:
			return &vault.ValidationError{Reason: ae.Message}
		default:
			return fmt.Errorf("%w: %s", vault.ErrStoreUnavailable, ae.Error())
		}
	}
	// transport failure or context deadline
	return fmt.Errorf("%w: %v", vault.ErrStoreUnavailable, err)
}

// Auth

func (c *Client) Register(ctx context.Context, email, password string) (models.User, error) {
	var u models.User
	err := c.doPublic(ctx, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": email, "password": password}, &u)
	return u, err
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var tokens models.TokenResponse
	if err := c.doPublic(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, &tokens); err != nil {
		return err
	}
	return c.tokens.SetTokens(tokens.AccessToken, tokens.RefreshToken)
}

func (c *Client) Logout() error { return c.tokens.ClearTokens() }

func (c *Client) Health(ctx context.Context) error {
	return c.doPublic(ctx, http.MethodGet, "/health", nil, nil)
}

// Session provider surface consumed by the vault's reauth gate.

func (c *Client) CurrentIdentity(ctx context.Context) (vault.Identity, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &u); err != nil {
		return vault.Identity{}, err
	}
	return vault.Identity{Email: u.Email, Provider: u.Provider}, nil
}

func (c *Client) ReauthenticateWithPassword(ctx context.Context, _, password string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/reauth", map[string]string{"password": password}, nil)
}

// ReauthenticateWithPopup proves federated consent by presenting the live
// refresh token, the artifact only the provider sign-in flow can mint.
func (c *Client) ReauthenticateWithPopup(ctx context.Context) error {
	refresh, err := c.tokens.RefreshToken()
	if err != nil || refresh == "" {
		return fmt.Errorf("%w: no provider session", vault.ErrStoreUnavailable)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/reauth", map[string]string{"popup_token": refresh}, nil)
}

// PIN document

func (c *Client) FetchPin(ctx context.Context) (models.PinSetting, bool, error) {
	var p models.PinSetting
	err := c.do(ctx, http.MethodGet, "/api/v1/settings/pin", nil, &p)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			// no document yet: absent, not an error
			return models.PinSetting{}, false, nil
		}
		return models.PinSetting{}, false, err
	}
	return p, true, nil
}

func (c *Client) SetPin(ctx context.Context, pin string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/settings/pin", map[string]string{"pin": pin}, nil)
}

// Credentials collection

func (c *Client) List(ctx context.Context) ([]models.Credential, error) {
	var items []models.Credential
	err := c.do(ctx, http.MethodGet, "/api/v1/credentials", nil, &items)
	return items, err
}

func (c *Client) Create(ctx context.Context, f models.CredentialFields) (models.Credential, error) {
	var out models.Credential
	err := c.do(ctx, http.MethodPost, "/api/v1/credentials", f, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, f models.CredentialFields) (models.Credential, error) {
	var out models.Credential
	err := c.do(ctx, http.MethodPut, "/api/v1/credentials/"+id, f, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/credentials/"+id, nil, nil)
}

// Health dashboard

func (c *Client) ListServers(ctx context.Context) ([]models.Server, error) {
	var items []models.Server
	err := c.do(ctx, http.MethodGet, "/api/v1/servers", nil, &items)
	return items, err
}

func (c *Client) AddServer(ctx context.Context, title, url string) (models.Server, error) {
	var out models.Server
	err := c.do(ctx, http.MethodPost, "/api/v1/servers", map[string]string{"title": title, "url": url}, &out)
	return out, err
}

func (c *Client) DeleteServer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/servers/"+id, nil, nil)
}

func (c *Client) CheckServer(ctx context.Context, id string) (models.Server, error) {
	var out models.Server
	err := c.do(ctx, http.MethodPost, "/api/v1/servers/"+id+"/check", nil, &out)
	return out, err
}
