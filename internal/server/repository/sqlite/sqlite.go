package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/firstindiacredit-Git/cred/internal/server/repository"
	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

type Repository struct {
	db *sql.DB
}

func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash BLOB,
			provider TEXT NOT NULL DEFAULT 'password',
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS credentials (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			username TEXT NOT NULL,
			password TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			FOREIGN KEY(owner_id) REFERENCES users(id)
		);
		CREATE TABLE IF NOT EXISTS pins (
			owner_id TEXT PRIMARY KEY,
			pin TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			FOREIGN KEY(owner_id) REFERENCES users(id)
		);
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);
		CREATE TABLE IF NOT EXISTS servers (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'unknown',
			response_time_ms INTEGER NOT NULL DEFAULT 0,
			last_checked TIMESTAMP,
			last_error TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(owner_id) REFERENCES users(id)
		);
	`); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Users

func (r *Repository) CreateUser(ctx context.Context, email string, passwordHash []byte, provider models.Provider) (models.User, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO users(id,email,password_hash,provider,created_at) VALUES(?,?,?,?,?)`,
		id, email, passwordHash, string(provider), now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.User{}, repository.ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return models.User{ID: id, Email: email, Provider: provider, CreatedAt: now}, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (models.User, []byte, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, email, password_hash, provider, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (models.User, []byte, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, email, password_hash, provider, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, []byte, error) {
	var u models.User
	var hash []byte
	var provider string
	if err := row.Scan(&u.ID, &u.Email, &hash, &provider, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, nil, repository.ErrNotFound
		}
		return models.User{}, nil, err
	}
	u.Provider = models.Provider(provider)
	return u, hash, nil
}

// Credentials

func (r *Repository) CreateCredential(ctx context.Context, ownerID string, f models.CredentialFields) (models.Credential, error) {
	now := time.Now().UTC()
	c := models.Credential{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     f.Title,
		Username:  f.Username,
		Password:  f.Password,
		URL:       f.URL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO credentials(id,owner_id,title,username,password,url,created_at,updated_at) VALUES(?,?,?,?,?,?,?,?)`,
		c.ID, c.OwnerID, c.Title, c.Username, c.Password, c.URL, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return models.Credential{}, err
	}
	return c, nil
}

func (r *Repository) UpdateCredential(ctx context.Context, ownerID, id string, f models.CredentialFields) (models.Credential, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE credentials SET title=?, username=?, password=?, url=?, updated_at=? WHERE id=? AND owner_id=?`,
		f.Title, f.Username, f.Password, f.URL, now, id, ownerID)
	if err != nil {
		return models.Credential{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return models.Credential{}, repository.ErrNotFound
	}
	return r.GetCredential(ctx, ownerID, id)
}

func (r *Repository) GetCredential(ctx context.Context, ownerID, id string) (models.Credential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id,owner_id,title,username,password,url,created_at,updated_at FROM credentials WHERE owner_id=? AND id=?`, ownerID, id)
	var c models.Credential
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Username, &c.Password, &c.URL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, repository.ErrNotFound
		}
		return models.Credential{}, err
	}
	return c, nil
}

func (r *Repository) ListCredentials(ctx context.Context, ownerID string) ([]models.Credential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id,owner_id,title,username,password,url,created_at,updated_at FROM credentials WHERE owner_id=? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Credential
	for rows.Next() {
		var c models.Credential
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Username, &c.Password, &c.URL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteCredential(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE owner_id=? AND id=?`, ownerID, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Pins

func (r *Repository) GetPin(ctx context.Context, ownerID string) (models.PinSetting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT pin, updated_at FROM pins WHERE owner_id=?`, ownerID)
	var p models.PinSetting
	if err := row.Scan(&p.Pin, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PinSetting{}, repository.ErrNotFound
		}
		return models.PinSetting{}, err
	}
	return p, nil
}

// SetPin overwrites the single PIN row; last write wins.
func (r *Repository) SetPin(ctx context.Context, ownerID, pin string) (models.PinSetting, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pins(owner_id, pin, updated_at) VALUES(?,?,?)
		ON CONFLICT(owner_id) DO UPDATE SET pin=excluded.pin, updated_at=excluded.updated_at
	`, ownerID, pin, now)
	if err != nil {
		return models.PinSetting{}, err
	}
	return models.PinSetting{Pin: pin, UpdatedAt: now}, nil
}

// Refresh tokens

func (r *Repository) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO refresh_tokens(token,user_id,expires_at,created_at) VALUES(?,?,?,?)`,
		token, userID, expiresAt, time.Now().UTC())
	return err
}

func (r *Repository) GetRefreshToken(ctx context.Context, token string) (userID string, expiresAt time.Time, err error) {
	row := r.db.QueryRowContext(ctx, `SELECT user_id, expires_at FROM refresh_tokens WHERE token=?`, token)
	err = row.Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = repository.ErrNotFound
	}
	return
}

func (r *Repository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token=?`, token)
	return err
}

// Servers

func (r *Repository) CreateServer(ctx context.Context, ownerID, title, url string) (models.Server, error) {
	s := models.Server{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Title:   title,
		URL:     url,
		Status:  models.ServerStatusUnknown,
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO servers(id,owner_id,title,url,status) VALUES(?,?,?,?,?)`,
		s.ID, s.OwnerID, s.Title, s.URL, string(s.Status))
	if err != nil {
		return models.Server{}, err
	}
	return s, nil
}

func (r *Repository) ListServers(ctx context.Context, ownerID string) ([]models.Server, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id,owner_id,title,url,status,response_time_ms,last_checked,last_error FROM servers WHERE owner_id=? ORDER BY title`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Server
	for rows.Next() {
		s, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetServer(ctx context.Context, ownerID, id string) (models.Server, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id,owner_id,title,url,status,response_time_ms,last_checked,last_error FROM servers WHERE owner_id=? AND id=?`, ownerID, id)
	s, err := scanServer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Server{}, repository.ErrNotFound
	}
	return s, err
}

func (r *Repository) UpdateServerStatus(ctx context.Context, ownerID, id string, status models.ServerStatus, responseTimeMs int64, checkErr string) (models.Server, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE servers SET status=?, response_time_ms=?, last_checked=?, last_error=? WHERE id=? AND owner_id=?`,
		string(status), responseTimeMs, time.Now().UTC(), checkErr, id, ownerID)
	if err != nil {
		return models.Server{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return models.Server{}, repository.ErrNotFound
	}
	return r.GetServer(ctx, ownerID, id)
}

func (r *Repository) DeleteServer(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM servers WHERE owner_id=? AND id=?`, ownerID, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanServer(row rowScanner) (models.Server, error) {
	var s models.Server
	var status string
	var checked sql.NullTime
	if err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.URL, &status, &s.ResponseTimeMs, &checked, &s.LastError); err != nil {
		return models.Server{}, err
	}
	s.Status = models.ServerStatus(status)
	if checked.Valid {
		s.LastChecked = checked.Time
	}
	return s, nil
}
