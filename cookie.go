package rp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/openidauth/rp/oidc"
)

// Cookie names used by the handler.  The request cookie lives for exactly
// one login round-trip; the session cookie identifies the long-lived user
// session.
const (
	requestCookieName = "rp_auth_request"
	sessionCookieName = "rp_session"
)

// signValue produces payload.signature with both parts base64url encoded,
// the signature an HMAC-SHA256 over the encoded payload.
func signValue(key, payload []byte) string {
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(encoded))
	return encoded + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verifyValue checks the signature and returns the decoded payload.
func verifyValue(key []byte, value string) ([]byte, error) {
	const op = "rp.verifyValue"
	encoded, sig, ok := strings.Cut(value, ".")
	if !ok {
		return nil, fmt.Errorf("%s: malformed cookie value: %w", op, oidc.ErrInvalidParameter)
	}
	wantSig, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("%s: malformed cookie signature: %w", op, oidc.ErrInvalidParameter)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(encoded))
	if !hmac.Equal(mac.Sum(nil), wantSig) {
		return nil, fmt.Errorf("%s: cookie signature mismatch: %w", op, oidc.ErrInvalidParameter)
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%s: malformed cookie payload: %w", op, oidc.ErrInvalidParameter)
	}
	return payload, nil
}

func (h *Handler) secureCookies() bool {
	return strings.HasPrefix(h.cfg.BaseURL, "https://")
}

// writeRequestCookie persists the transient authentication request.  For
// form_post flows the provider delivers the callback via a cross-site POST,
// which only reaches us with SameSite=None.
func (h *Handler) writeRequestCookie(w http.ResponseWriter, r *oidc.Request) error {
	const op = "Handler.writeRequestCookie"
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%s: unable to marshal request: %w", op, err)
	}
	sameSite := http.SameSiteLaxMode
	if h.cfg.EffectiveResponseMode() == oidc.ResponseModeFormPost {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     requestCookieName,
		Value:    signValue(h.cookieKey, payload),
		Path:     "/",
		MaxAge:   int(h.cfg.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: sameSite,
	})
	return nil
}

// readRequestCookie returns the transient authentication request, or an
// error wrapping oidc.ErrMissingState when there is no usable cookie: the
// browser lost it, it was tampered with, or the attempt expired.
func (h *Handler) readRequestCookie(req *http.Request) (*oidc.Request, error) {
	const op = "Handler.readRequestCookie"
	c, err := req.Cookie(requestCookieName)
	if err != nil {
		return nil, fmt.Errorf("%s: no authentication request cookie: %w", op, oidc.ErrMissingState)
	}
	payload, err := verifyValue(h.cookieKey, c.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid authentication request cookie: %w", op, oidc.ErrMissingState)
	}
	var r oidc.Request
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("%s: undecodable authentication request cookie: %w", op, oidc.ErrMissingState)
	}
	if r.IsExpired() {
		return nil, fmt.Errorf("%s: authentication request expired: %w", op, oidc.ErrMissingState)
	}
	return &r, nil
}

// clearRequestCookie discards the transient request; it is single use no
// matter how the callback turns out.
func (h *Handler) clearRequestCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     requestCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies(),
	})
}

func (h *Handler) writeSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signValue(h.cookieKey, []byte(sessionID)),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// readSessionCookie returns the session id, or "" when the request carries
// no valid session cookie.
func (h *Handler) readSessionCookie(req *http.Request) string {
	c, err := req.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	payload, err := verifyValue(h.cookieKey, c.Value)
	if err != nil {
		return ""
	}
	return string(payload)
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies(),
	})
}
