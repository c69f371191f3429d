package httpapi

import "net/http"

type setPinRequest struct {
	Pin string `json:"pin"`
}

// handleGetPin returns the owner's PIN document, or 404 when no PIN has been
// set yet. The client treats the 404 as "absent", not as a store failure.
func (r *Router) handleGetPin(w http.ResponseWriter, req *http.Request) {
	p, err := r.services.Pins.Get(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (r *Router) handleSetPin(w http.ResponseWriter, req *http.Request) {
	var body setPinRequest
	if !r.decode(w, req, &body) {
		return
	}
	p, err := r.services.Pins.Set(req.Context(), getUserID(req.Context()), body.Pin)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
