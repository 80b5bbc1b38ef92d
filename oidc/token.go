package oidc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDToken is a raw oidc id_token.  Its String and JSON representations are
// redacted.
type IDToken string

// RedactedIDToken is the redacted string or json for an oidc id_token
const RedactedIDToken = "[REDACTED: id_token]"

// String will redact the token
func (t IDToken) String() string {
	return RedactedIDToken
}

// MarshalJSON will redact the token
func (t IDToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedIDToken)
}

// Claims decodes the id_token's claims without verifying its signature.
// Verification must already have happened via Issuer.VerifyIDToken before
// the claims are trusted.
func (t IDToken) Claims() (jwt.MapClaims, error) {
	const op = "IDToken.Claims"
	if t == "" {
		return nil, fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(string(t), claims); err != nil {
		return nil, fmt.Errorf("%s: unable to parse id_token claims: %w", op, err)
	}
	return claims, nil
}

const tokenExpirySkew = 10 * time.Second

// Token is the result of a successful authentication: the verified id_token
// plus whatever the token endpoint returned alongside it.  Access and
// refresh tokens are absent for implicit-style flows.
type Token struct {
	IDToken      IDToken
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Expired reports whether the access token has expired.  A zero expiry
// means the provider didn't bound the token's lifetime.
func (t *Token) Expired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return t.Expiry.Round(0).Before(time.Now().Add(tokenExpirySkew))
}

// Valid reports whether the token is usable: non-nil, carrying an id_token
// and not expired.
func (t *Token) Valid() bool {
	if t == nil {
		return false
	}
	if t.IDToken == "" {
		return false
	}
	return !t.Expired()
}
