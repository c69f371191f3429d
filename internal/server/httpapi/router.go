package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/firstindiacredit-Git/cred/internal/server/repository"
	"github.com/firstindiacredit-Git/cred/internal/server/service"
)

type Router struct {
	services        *service.Services
	logger          *log.Logger
	maxRequestBytes int64
}

func NewRouter(services *service.Services, logger *log.Logger, maxRequestBytes int64) http.Handler {
	r := &Router{services: services, logger: logger, maxRequestBytes: maxRequestBytes}
	mux := chi.NewRouter()

	mux.Get("/health", r.handleHealth)
	mux.Post("/api/v1/auth/register", r.handleRegister)
	mux.Post("/api/v1/auth/login", r.handleLogin)
	mux.Post("/api/v1/auth/refresh", r.handleRefresh)

	mux.Group(func(pr chi.Router) {
		pr.Use(r.authMiddleware)
		pr.Get("/api/v1/auth/me", r.handleMe)
		pr.Post("/api/v1/auth/reauth", r.handleReauth)

		pr.Get("/api/v1/credentials", r.handleListCredentials)
		pr.Post("/api/v1/credentials", r.handleCreateCredential)
		pr.Put("/api/v1/credentials/{id}", r.handleUpdateCredential)
		pr.Delete("/api/v1/credentials/{id}", r.handleDeleteCredential)

		pr.Get("/api/v1/settings/pin", r.handleGetPin)
		pr.Put("/api/v1/settings/pin", r.handleSetPin)

		pr.Get("/api/v1/servers", r.handleListServers)
		pr.Post("/api/v1/servers", r.handleAddServer)
		pr.Delete("/api/v1/servers/{id}", r.handleDeleteServer)
		pr.Post("/api/v1/servers/{id}/check", r.handleCheckServer)
	})

	return mux
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (r *Router) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnsupportedProvider):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		if r.logger != nil {
			r.logger.Printf("internal error: %v", err)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (r *Router) decode(w http.ResponseWriter, req *http.Request, v any) bool {
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request entity too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}
