package httpapi

import (
	"net/http"
	"time"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type reauthRequest struct {
	Password   string `json:"password,omitempty"`
	PopupToken string `json:"popup_token,omitempty"`
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	var body registerRequest
	if !r.decode(w, req, &body) {
		return
	}
	user, err := r.services.Auth.Register(req.Context(), body.Email, body.Password)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if !r.decode(w, req, &body) {
		return
	}
	token, err := r.services.Auth.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		r.writeError(w, err)
		return
	}
	uid, _ := r.services.Auth.ParseToken(req.Context(), token)
	refresh, err := r.services.Auth.IssueRefreshToken(req.Context(), uid, 30*24*time.Hour)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, RefreshToken: refresh})
}

func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request) {
	var body refreshRequest
	if !r.decode(w, req, &body) {
		return
	}
	access, refresh, err := r.services.Auth.Refresh(req.Context(), body.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	user, err := r.services.Auth.GetUser(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (r *Router) handleReauth(w http.ResponseWriter, req *http.Request) {
	var body reauthRequest
	if !r.decode(w, req, &body) {
		return
	}
	if err := r.services.Auth.Reauthenticate(req.Context(), getUserID(req.Context()), body.Password, body.PopupToken); err != nil {
		r.writeError(w, err)
		return
	}
	// Confirmation only. No token is minted for the reset step.
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}
