package oidc

import (
	"errors"
)

var (
	ErrInvalidParameter        = errors.New("invalid parameter")
	ErrNilParameter            = errors.New("nil parameter")
	ErrInvalidCACert           = errors.New("invalid CA certificate")
	ErrInvalidIssuer           = errors.New("invalid issuer")
	ErrIDGeneratorFailed       = errors.New("id generation failed")
	ErrDiscovery               = errors.New("issuer discovery failed")
	ErrMissingState            = errors.New("authentication request state is missing")
	ErrStateMismatch           = errors.New("authentication request state mismatch")
	ErrExpiredRequest          = errors.New("authentication request is expired")
	ErrMissingIDToken          = errors.New("id_token is missing")
	ErrInvalidToken            = errors.New("id_token validation failed")
	ErrInvalidNonce            = errors.New("invalid nonce")
	ErrInvalidAudience         = errors.New("invalid audience")
	ErrTokenExchange           = errors.New("authorization code exchange failed")
	ErrUnsupportedResponseType = errors.New("unsupported response_type")
	ErrNotFound                = errors.New("not found")
)
