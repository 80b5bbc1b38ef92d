package oidc

import (
	"context"
	"errors"
	"fmt"

	goidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/openidauth/rp/internal/strutils"
)

// Exchange presents an authorization code at the issuer's token endpoint
// and verifies the id_token it returns against the request's nonce.  On
// success the Token carries the id_token plus the access/refresh tokens the
// provider issued alongside it.
func (i *Issuer) Exchange(ctx context.Context, c *Config, code string, nonce string) (*Token, error) {
	const op = "Issuer.Exchange"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if code == "" {
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	}
	oauth2Config := oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: string(c.ClientSecret),
		RedirectURL:  c.RedirectURL(),
		Endpoint:     i.Endpoint(),
		Scopes:       c.RequestedScopes(),
	}
	oauth2Token, err := oauth2Config.Exchange(goidc.ClientContext(ctx, i.client), code)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to exchange code with provider: %w", op, errors.Join(ErrTokenExchange, err))
	}
	raw, ok := oauth2Token.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("%s: id_token is missing from code exchange: %w", op, ErrMissingIDToken)
	}
	t := &Token{
		IDToken:      IDToken(raw),
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		Expiry:       oauth2Token.Expiry,
	}
	if err := i.VerifyIDToken(ctx, c, t.IDToken, nonce); err != nil {
		return nil, fmt.Errorf("%s: id_token failed verification: %w", op, err)
	}
	return t, nil
}

// VerifyIDToken verifies the id_token was signed by the issuer and checks
// its issuer, audience, expiry and nonce claims.
//
// See: https://openid.net/specs/openid-connect-core-1_0.html#IDTokenValidation
func (i *Issuer) VerifyIDToken(ctx context.Context, c *Config, t IDToken, nonce string) error {
	const op = "Issuer.VerifyIDToken"
	if t == "" {
		return fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	if nonce == "" {
		return fmt.Errorf("%s: nonce is empty: %w", op, ErrInvalidParameter)
	}
	if i.provider == nil {
		return fmt.Errorf("%s: issuer %q has no key set (statically configured): %w", op, i.name, ErrInvalidParameter)
	}
	verifierConfig := &goidc.Config{
		ClientID:             c.ClientID,
		SupportedSigningAlgs: c.SigningAlgs(),
	}
	if len(c.Audiences) > 0 {
		// widened audience set: take over the aud check from go-oidc
		verifierConfig.ClientID = ""
		verifierConfig.SkipClientIDCheck = true
	}
	verifier := i.provider.VerifierContext(goidc.ClientContext(ctx, i.client), verifierConfig)
	idToken, err := verifier.Verify(ctx, string(t))
	if err != nil {
		return fmt.Errorf("%s: invalid id_token: %w", op, errors.Join(ErrInvalidToken, err))
	}
	if idToken.Nonce != nonce {
		return fmt.Errorf("%s: invalid id_token nonce: %w", op, errors.Join(ErrInvalidToken, ErrInvalidNonce))
	}
	if len(c.Audiences) > 0 {
		accepted := append([]string{c.ClientID}, c.Audiences...)
		found := false
		for _, a := range accepted {
			if strutils.StrListContains(idToken.Audience, a) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: invalid id_token audiences: %w", op, errors.Join(ErrInvalidToken, ErrInvalidAudience))
		}
	}
	return nil
}
