package rp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/openidauth/rp/oidc"
)

// callback processes the provider's authorization response.  It accepts
// both transport shapes (GET query string and form_post bodies);
// req.FormValue normalizes the two, preferring body values.
//
// The validation ladder runs in order and each rung is terminal: a usable
// transient request must exist, a provider-reported error short-circuits,
// the returned state must match, and any id_token (inline or from a code
// exchange) must verify against the issuer's keys and the stored nonce.
// No session state is committed unless every rung passes, and the
// transient request is discarded no matter what.
func (h *Handler) callback(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	reqState := req.FormValue("state")

	r, err := h.readRequestCookie(req)
	h.clearRequestCookie(w)
	if err != nil {
		h.errorFn(reqState, nil, err, w, req)
		return
	}

	if e := req.FormValue("error"); e != "" {
		respErr := &AuthenErrorResponse{
			Error:       e,
			Description: req.FormValue("error_description"),
			URI:         req.FormValue("error_uri"),
		}
		h.errorFn(reqState, respErr, nil, w, req)
		return
	}

	if reqState != r.State {
		err := fmt.Errorf("callback state and authentication request state are not equal: %w", oidc.ErrStateMismatch)
		h.errorFn(reqState, nil, err, w, req)
		return
	}

	issuer, err := h.issuers.Resolve(ctx, h.cfg.Issuer)
	if err != nil {
		h.errorFn(reqState, nil, err, w, req)
		return
	}

	var t *oidc.Token
	if rawIDToken := req.FormValue("id_token"); rawIDToken != "" {
		if err := issuer.VerifyIDToken(ctx, h.cfg, oidc.IDToken(rawIDToken), r.Nonce); err != nil {
			h.errorFn(reqState, nil, err, w, req)
			return
		}
		t = &oidc.Token{
			IDToken:     oidc.IDToken(rawIDToken),
			AccessToken: req.FormValue("access_token"),
		}
	}

	if code := req.FormValue("code"); code != "" {
		exchanged, err := issuer.Exchange(ctx, h.cfg, code, r.Nonce)
		if err != nil {
			h.errorFn(reqState, nil, err, w, req)
			return
		}
		// for hybrid flows the token endpoint's response is authoritative
		t = exchanged
	}

	if t == nil {
		// response type "none": the provider answered, there is no user to
		// establish
		h.successFn(r, nil, w, req)
		return
	}

	if err := h.establishSession(w, req, t); err != nil {
		h.errorFn(reqState, nil, err, w, req)
		return
	}

	h.successFn(r, t, w, req)
}

// establishSession turns a verified token into the long-lived user session,
// and records the logout token when the subject has a logout-capable
// provider session.  All-or-nothing: a storage failure leaves no session
// behind.
func (h *Handler) establishSession(w http.ResponseWriter, req *http.Request, t *oidc.Token) error {
	const op = "Handler.establishSession"
	ctx := req.Context()

	claims, err := t.IDToken.Claims()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	identity := Identity{
		IDToken:      string(t.IDToken),
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
		Claims:       claims,
	}
	identity.Subject, _ = claims["sub"].(string)
	identity.Issuer, _ = claims["iss"].(string)
	identity.SubjectSessionID, _ = claims["sid"].(string)
	if identity.Issuer == "" {
		identity.Issuer = h.cfg.Issuer
	}

	// a subject without a sid claim has no provider session to terminate
	// later, so there is nothing durable to record
	if identity.SubjectSessionID != "" {
		expiresAt := time.Now().Add(h.retention)
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Add(h.retention)
		}
		if err := h.logoutTokens.Set(ctx, identity.LogoutKey(), []byte(t.IDToken), expiresAt); err != nil {
			return fmt.Errorf("%s: unable to store logout token: %w", op, err)
		}
	}

	sessionID, err := oidc.NewID(oidc.WithPrefix("s"))
	if err != nil {
		return fmt.Errorf("%s: unable to generate a session id: %w", op, err)
	}
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("%s: unable to marshal identity: %w", op, err)
	}
	if err := h.sessions.Set(ctx, sessionID, data, time.Now().Add(h.retention)); err != nil {
		return fmt.Errorf("%s: unable to store session: %w", op, err)
	}
	h.writeSessionCookie(w, sessionID)
	h.logger.Info("session established", "subject", identity.Subject, "issuer", identity.Issuer)
	return nil
}
