package oidc

import (
	"fmt"
	"net/url"
	"strings"
)

// AuthURL composes the authorization request URL for one authentication
// attempt.  Caller-configured AuthParams are applied first so the
// protocol-critical parameters computed here always win.  The response_mode
// parameter is omitted entirely when the effective mode is unset, leaving
// the provider to its own default.
func (i *Issuer) AuthURL(c *Config, r *Request) (string, error) {
	const op = "Issuer.AuthURL"
	if c == nil {
		return "", fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if r == nil {
		return "", fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if r.State == "" || r.Nonce == "" {
		return "", fmt.Errorf("%s: request state or nonce is empty: %w", op, ErrInvalidParameter)
	}
	if r.State == r.Nonce {
		return "", fmt.Errorf("%s: request state and nonce cannot be equal: %w", op, ErrInvalidParameter)
	}

	v := url.Values{}
	for k, val := range c.AuthParams {
		v.Set(k, val)
	}
	v.Set("client_id", c.ClientID)
	v.Set("redirect_uri", c.RedirectURL())
	v.Set("scope", strings.Join(c.RequestedScopes(), " "))
	v.Set("response_type", string(c.EffectiveResponseType()))
	v.Set("state", r.State)
	v.Set("nonce", r.Nonce)
	if mode := c.EffectiveResponseMode(); mode != ResponseModeUnset {
		v.Set("response_mode", string(mode))
	} else {
		v.Del("response_mode")
	}
	return fmt.Sprintf("%s?%s", i.authorizationURL, v.Encode()), nil
}

// EndSessionURL composes the provider's logout redirect for a previously
// issued id_token.  It returns "" when the provider doesn't advertise an
// end-session endpoint, which callers treat as "local logout only".
func (i *Issuer) EndSessionURL(idTokenHint IDToken, postLogoutRedirect string) string {
	if i.endSessionURL == "" {
		return ""
	}
	v := url.Values{}
	if idTokenHint != "" {
		v.Set("id_token_hint", string(idTokenHint))
	}
	if postLogoutRedirect != "" {
		v.Set("post_logout_redirect_uri", postLogoutRedirect)
	}
	if len(v) == 0 {
		return i.endSessionURL
	}
	return fmt.Sprintf("%s?%s", i.endSessionURL, v.Encode())
}
