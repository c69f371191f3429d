package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

type addServerRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (r *Router) handleListServers(w http.ResponseWriter, req *http.Request) {
	items, err := r.services.Monitor.List(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Server{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (r *Router) handleAddServer(w http.ResponseWriter, req *http.Request) {
	var body addServerRequest
	if !r.decode(w, req, &body) {
		return
	}
	s, err := r.services.Monitor.Add(req.Context(), getUserID(req.Context()), body.Title, body.URL)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (r *Router) handleDeleteServer(w http.ResponseWriter, req *http.Request) {
	if err := r.services.Monitor.Delete(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id")); err != nil {
		r.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleCheckServer(w http.ResponseWriter, req *http.Request) {
	s, err := r.services.Monitor.Check(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id"))
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
