package rp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/openidauth/rp/oidc"
	"github.com/openidauth/rp/store"
)

// logout terminates the local session and, when a logout token is on
// record for the subject, redirects to the provider's end-session endpoint
// so the provider session dies too.  A missing record is never an error:
// logout degrades to local-only.  The local session is destroyed
// unconditionally.
func (h *Handler) logout(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	postLogout := h.postLogoutURL(req.URL.Query().Get("return_to"))

	sessionID := h.readSessionCookie(req)
	h.clearSessionCookie(w)
	if sessionID == "" {
		http.Redirect(w, req, postLogout, http.StatusFound)
		return
	}

	var identity Identity
	data, err := h.sessions.Get(ctx, sessionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Redirect(w, req, postLogout, http.StatusFound)
		return
	case err != nil:
		h.logger.Error("unable to read session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.sessions.Destroy(ctx, sessionID); err != nil {
		h.logger.Error("unable to destroy session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := json.Unmarshal(data, &identity); err != nil {
		h.logger.Error("undecodable session record", "error", err)
		http.Redirect(w, req, postLogout, http.StatusFound)
		return
	}
	h.logger.Info("session terminated", "subject", identity.Subject, "issuer", identity.Issuer)

	if identity.SubjectSessionID == "" {
		http.Redirect(w, req, postLogout, http.StatusFound)
		return
	}

	logoutToken, err := h.logoutTokens.Get(ctx, identity.LogoutKey())
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Redirect(w, req, postLogout, http.StatusFound)
		return
	case err != nil:
		h.logger.Error("unable to read logout token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	// the record is read once; it's of no further use either way
	if err := h.logoutTokens.Destroy(ctx, identity.LogoutKey()); err != nil {
		h.logger.Error("unable to destroy logout token", "error", err)
	}

	issuer, err := h.issuers.Resolve(ctx, h.cfg.Issuer)
	if err != nil {
		h.logger.Error("unable to resolve issuer for logout", "issuer", h.cfg.Issuer, "error", err)
		http.Redirect(w, req, postLogout, http.StatusFound)
		return
	}
	endSession := issuer.EndSessionURL(oidc.IDToken(logoutToken), postLogout)
	if endSession == "" {
		http.Redirect(w, req, postLogout, http.StatusFound)
		return
	}
	http.Redirect(w, req, endSession, http.StatusFound)
}

// postLogoutURL is the absolute URL the browser lands on after logout,
// local or provider-side.
func (h *Handler) postLogoutURL(returnTo string) string {
	return strings.TrimSuffix(h.cfg.BaseURL, "/") + sanitizeReturnTo(returnTo)
}
