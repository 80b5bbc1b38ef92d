package rp

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated user written into the long-lived session on
// a successful callback.  It is destroyed on logout or session expiry.
type Identity struct {
	// Subject is the id_token's "sub" claim.
	Subject string `json:"sub"`

	// Issuer is the identifier of the issuer that authenticated the user.
	Issuer string `json:"iss"`

	// SubjectSessionID is the id_token's "sid" claim, unique within one
	// issuer.  Empty when the provider doesn't correlate sessions, in
	// which case no durable logout-token record exists for this identity.
	SubjectSessionID string `json:"sid,omitempty"`

	// IDToken is the raw verified id_token.
	IDToken string `json:"id_token,omitempty"`

	// AccessToken and RefreshToken are present for code flows when the
	// provider issued them.
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`

	// Claims are the id_token's claims.
	Claims jwt.MapClaims `json:"claims,omitempty"`
}

// LogoutKey is the durable session token record key for this identity.
// sids are only unique within one issuer, so the issuer is part of the key.
// The format is stable for interoperability with existing persisted records.
func (i *Identity) LogoutKey() string {
	return i.Issuer + "|" + i.SubjectSessionID
}
