package rp

import (
	"net/http"

	"github.com/openidauth/rp/oidc"
)

// login initiates an authentication attempt: it generates fresh state and
// nonce, persists them (with the return-to target) in the transient request
// cookie, and redirects the browser to the provider's authorization
// endpoint.  The state and nonce in the redirect always match the persisted
// ones; a second login attempt from the same browser replaces the first
// (last write wins).
func (h *Handler) login(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	issuer, err := h.issuers.Resolve(ctx, h.cfg.Issuer)
	if err != nil {
		h.logger.Error("unable to resolve issuer", "issuer", h.cfg.Issuer, "error", err)
		http.Error(w, "identity provider unavailable", http.StatusBadGateway)
		return
	}

	r, err := oidc.NewRequest(h.cfg.Expiry(), sanitizeReturnTo(req.URL.Query().Get("return_to")))
	if err != nil {
		h.logger.Error("unable to create authentication request", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	authURL, err := issuer.AuthURL(h.cfg, r)
	if err != nil {
		h.logger.Error("unable to build authorization URL", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.writeRequestCookie(w, r); err != nil {
		h.logger.Error("unable to persist authentication request", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, req, authURL, http.StatusFound)
}
