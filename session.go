package rp

import (
	"encoding/json"
	"net/http"
)

// sessionView is the diagnostic JSON shape returned by GET /session.  It is
// for introspection and tests, not part of the protocol contract.
type sessionView struct {
	State         string `json:"state,omitempty"`
	Nonce         string `json:"nonce,omitempty"`
	ReturnTo      string `json:"return_to,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Subject       string `json:"subject,omitempty"`
	Issuer        string `json:"issuer,omitempty"`
}

// session renders the current transient and authenticated session state.
func (h *Handler) session(w http.ResponseWriter, req *http.Request) {
	view := sessionView{}

	if r, err := h.readRequestCookie(req); err == nil {
		view.State = r.State
		view.Nonce = r.Nonce
		view.ReturnTo = r.ReturnTo
	}

	if sessionID := h.readSessionCookie(req); sessionID != "" {
		if data, err := h.sessions.Get(req.Context(), sessionID); err == nil {
			var identity Identity
			if err := json.Unmarshal(data, &identity); err == nil {
				view.Authenticated = true
				view.Subject = identity.Subject
				view.Issuer = identity.Issuer
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}
