package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/firstindiacredit-Git/cred/internal/server/config"
	"github.com/firstindiacredit-Git/cred/internal/shared/models"
	"github.com/firstindiacredit-Git/cred/internal/shared/passhash"
)

type Repository interface {
	CreateUser(ctx context.Context, email string, passwordHash []byte, provider models.Provider) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, []byte, error)
	GetUserByID(ctx context.Context, id string) (models.User, []byte, error)

	CreateCredential(ctx context.Context, ownerID string, f models.CredentialFields) (models.Credential, error)
	UpdateCredential(ctx context.Context, ownerID, id string, f models.CredentialFields) (models.Credential, error)
	GetCredential(ctx context.Context, ownerID, id string) (models.Credential, error)
	ListCredentials(ctx context.Context, ownerID string) ([]models.Credential, error)
	DeleteCredential(ctx context.Context, ownerID, id string) error

	GetPin(ctx context.Context, ownerID string) (models.PinSetting, error)
	SetPin(ctx context.Context, ownerID, pin string) (models.PinSetting, error)

	CreateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (userID string, expiresAt time.Time, err error)
	DeleteRefreshToken(ctx context.Context, token string) error

	CreateServer(ctx context.Context, ownerID, title, url string) (models.Server, error)
	ListServers(ctx context.Context, ownerID string) ([]models.Server, error)
	GetServer(ctx context.Context, ownerID, id string) (models.Server, error)
	UpdateServerStatus(ctx context.Context, ownerID, id string, status models.ServerStatus, responseTimeMs int64, checkErr string) (models.Server, error)
	DeleteServer(ctx context.Context, ownerID, id string) error
}

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnsupportedProvider = errors.New("unsupported authentication provider")
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

type Services struct {
	Auth        *AuthService
	Credentials *CredentialsService
	Pins        *PinService
	Monitor     *MonitorService
}

func NewServices(repo Repository, cfg config.Config) *Services {
	return &Services{
		Auth:        &AuthService{repo: repo, jwtSecret: []byte(cfg.JWTSecret)},
		Credentials: &CredentialsService{repo: repo},
		Pins:        &PinService{repo: repo},
		Monitor:     &MonitorService{repo: repo, client: &http.Client{Timeout: 5 * time.Second}},
	}
}

// AuthService implements user registration, password verification, JWT access
// token issuance, refresh token rotation and identity re-proof for PIN resets.
type AuthService struct {
	repo      Repository
	jwtSecret []byte
}

func (a *AuthService) Register(ctx context.Context, email, password string) (models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: email and password required", ErrValidation)
	}
	phc, err := passhash.Hash(password)
	if err != nil {
		return models.User{}, err
	}
	return a.repo.CreateUser(ctx, email, []byte(phc), models.ProviderPassword)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, hash, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if u.Provider != models.ProviderPassword {
		return "", fmt.Errorf("%w: sign in through your identity provider", ErrInvalidCredentials)
	}
	ok, err := passhash.Verify(string(hash), password)
	if err != nil || !ok {
		return "", ErrInvalidCredentials
	}
	return a.IssueAccessToken(u.ID, 24*time.Hour)
}

// Reauthenticate re-proves the caller's primary identity. It grants nothing:
// success only confirms the proof so a PIN reset may proceed, and the proof is
// never cached server-side.
func (a *AuthService) Reauthenticate(ctx context.Context, userID, password, popupToken string) error {
	u, hash, err := a.repo.GetUserByID(ctx, userID)
	if err != nil {
		return ErrInvalidCredentials
	}
	switch u.Provider {
	case models.ProviderPassword:
		ok, err := passhash.Verify(string(hash), password)
		if err != nil || !ok {
			return ErrInvalidCredentials
		}
		return nil
	case models.ProviderFederated:
		// Popup consent is proven by presenting a live refresh token for
		// this user, the artifact only the provider flow can mint.
		tokenUser, exp, err := a.repo.GetRefreshToken(ctx, popupToken)
		if err != nil || tokenUser != userID || time.Now().After(exp) {
			return ErrInvalidCredentials
		}
		return nil
	default:
		return ErrUnsupportedProvider
	}
}

func (a *AuthService) ParseToken(_ context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token subject")
	}
	return sub, nil
}

func (a *AuthService) IssueAccessToken(userID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{"sub": userID, "exp": time.Now().Add(ttl).Unix()}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.jwtSecret)
}

func (a *AuthService) IssueRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := a.repo.CreateRefreshToken(ctx, userID, token, time.Now().Add(ttl)); err != nil {
		return "", err
	}
	return token, nil
}

func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	userID, exp, err := a.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}
	if time.Now().After(exp) {
		_ = a.repo.DeleteRefreshToken(ctx, refreshToken)
		return "", "", errors.New("refresh token expired")
	}
	// rotate
	_ = a.repo.DeleteRefreshToken(ctx, refreshToken)
	next, err := a.IssueRefreshToken(ctx, userID, 30*24*time.Hour)
	if err != nil {
		return "", "", err
	}
	access, err := a.IssueAccessToken(userID, 24*time.Hour)
	if err != nil {
		return "", "", err
	}
	return access, next, nil
}

func (a *AuthService) GetUser(ctx context.Context, userID string) (models.User, error) {
	u, _, err := a.repo.GetUserByID(ctx, userID)
	return u, err
}

// CredentialsService applies the required-field rules and delegates storage.
// Each call is a single atomic row write; no partial updates are possible.
type CredentialsService struct {
	repo Repository
}

func validateFields(f models.CredentialFields) error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(f.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if f.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	return nil
}

func (s *CredentialsService) Create(ctx context.Context, ownerID string, f models.CredentialFields) (models.Credential, error) {
	if err := validateFields(f); err != nil {
		return models.Credential{}, err
	}
	return s.repo.CreateCredential(ctx, ownerID, f)
}

func (s *CredentialsService) Update(ctx context.Context, ownerID, id string, f models.CredentialFields) (models.Credential, error) {
	if err := validateFields(f); err != nil {
		return models.Credential{}, err
	}
	return s.repo.UpdateCredential(ctx, ownerID, id, f)
}

func (s *CredentialsService) List(ctx context.Context, ownerID string) ([]models.Credential, error) {
	return s.repo.ListCredentials(ctx, ownerID)
}

func (s *CredentialsService) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.DeleteCredential(ctx, ownerID, id)
}

// PinService guards the single per-owner PIN document.
type PinService struct {
	repo Repository
}

// Get returns the owner's PIN. A missing PIN surfaces as repository.ErrNotFound;
// callers treat that as "not set", not as a failure.
func (s *PinService) Get(ctx context.Context, ownerID string) (models.PinSetting, error) {
	return s.repo.GetPin(ctx, ownerID)
}

func (s *PinService) Set(ctx context.Context, ownerID, pin string) (models.PinSetting, error) {
	if !pinPattern.MatchString(pin) {
		return models.PinSetting{}, fmt.Errorf("%w: PIN must be exactly 4 digits", ErrValidation)
	}
	return s.repo.SetPin(ctx, ownerID, pin)
}

// MonitorService keeps the health-check dashboard registry and performs
// on-demand probes of registered endpoints.
type MonitorService struct {
	repo   Repository
	client *http.Client
}

func (s *MonitorService) Add(ctx context.Context, ownerID, title, url string) (models.Server, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(url) == "" {
		return models.Server{}, fmt.Errorf("%w: title and url required", ErrValidation)
	}
	return s.repo.CreateServer(ctx, ownerID, title, url)
}

func (s *MonitorService) List(ctx context.Context, ownerID string) ([]models.Server, error) {
	return s.repo.ListServers(ctx, ownerID)
}

func (s *MonitorService) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.DeleteServer(ctx, ownerID, id)
}

// Check probes the registered endpoint and records the outcome. A probe
// failure is a recorded status, not a service error.
func (s *MonitorService) Check(ctx context.Context, ownerID, id string) (models.Server, error) {
	srv, err := s.repo.GetServer(ctx, ownerID, id)
	if err != nil {
		return models.Server{}, err
	}
	status := models.ServerStatusOnline
	checkErr := ""
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		status = models.ServerStatusError
		checkErr = err.Error()
	} else {
		resp, err := s.client.Do(req)
		if err != nil {
			status = models.ServerStatusOffline
			checkErr = err.Error()
		} else {
			resp.Body.Close()
			if resp.StatusCode >= 400 {
				status = models.ServerStatusError
				checkErr = resp.Status
			}
		}
	}
	elapsed := time.Since(start).Milliseconds()
	return s.repo.UpdateServerStatus(ctx, ownerID, id, status, elapsed, checkErr)
}
