package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CRED_HTTP_ADDR", "")
	t.Setenv("CRED_DB_DSN", "")
	t.Setenv("CRED_JWT_SECRET", "")
	t.Setenv("CRED_MAX_REQUEST_BYTES", "")
	cfg := Load()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("addr: %q", cfg.HTTPAddr)
	}
	if cfg.DatabaseDSN == "" {
		t.Fatal("dsn empty")
	}
	if cfg.MaxRequestBytes != 1<<20 {
		t.Fatalf("max request bytes: %d", cfg.MaxRequestBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CRED_HTTP_ADDR", ":9090")
	t.Setenv("CRED_JWT_SECRET", "prod-secret")
	t.Setenv("CRED_MAX_REQUEST_BYTES", "2048")
	cfg := Load()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("addr: %q", cfg.HTTPAddr)
	}
	if cfg.JWTSecret != "prod-secret" {
		t.Fatalf("secret: %q", cfg.JWTSecret)
	}
	if cfg.MaxRequestBytes != 2048 {
		t.Fatalf("max request bytes: %d", cfg.MaxRequestBytes)
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("CRED_MAX_REQUEST_BYTES", "not-a-number")
	cfg := Load()
	if cfg.MaxRequestBytes != 1<<20 {
		t.Fatalf("max request bytes: %d", cfg.MaxRequestBytes)
	}
}
