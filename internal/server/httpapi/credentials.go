package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

func (r *Router) handleListCredentials(w http.ResponseWriter, req *http.Request) {
	items, err := r.services.Credentials.List(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Credential{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (r *Router) handleCreateCredential(w http.ResponseWriter, req *http.Request) {
	var body models.CredentialFields
	if !r.decode(w, req, &body) {
		return
	}
	c, err := r.services.Credentials.Create(req.Context(), getUserID(req.Context()), body)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (r *Router) handleUpdateCredential(w http.ResponseWriter, req *http.Request) {
	var body models.CredentialFields
	if !r.decode(w, req, &body) {
		return
	}
	c, err := r.services.Credentials.Update(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id"), body)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handleDeleteCredential(w http.ResponseWriter, req *http.Request) {
	if err := r.services.Credentials.Delete(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id")); err != nil {
		r.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
