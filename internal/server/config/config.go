package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr        string
	DatabaseDSN     string
	JWTSecret       string
	MaxRequestBytes int64
}

func Load() Config {
	cfg := Config{
		HTTPAddr:        getEnv("CRED_HTTP_ADDR", ":8080"),
		DatabaseDSN:     getEnv("CRED_DB_DSN", "file:cred.db?cache=shared&mode=rwc"),
		JWTSecret:       getEnv("CRED_JWT_SECRET", "dev-secret-change"),
		MaxRequestBytes: getEnvInt64("CRED_MAX_REQUEST_BYTES", 1<<20),
	}
	if cfg.JWTSecret == "dev-secret-change" {
		log.Println("WARNING: using development JWT secret; set CRED_JWT_SECRET")
	}
	return cfg
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
