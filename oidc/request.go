package oidc

import (
	"fmt"
	"time"
)

// Request represents one in-flight authentication attempt: the transient
// state that must survive exactly one round-trip from login initiation to
// the provider's callback.  It is serialized into a signed cookie by the rp
// package, so its fields are exported for JSON round-tripping.
//
// State is round-tripped through the provider to tie the callback to this
// attempt (CSRF protection).  Nonce is embedded in the issued id_token to
// prevent replay.  The two can never be equal.
type Request struct {
	// State is a unique opaque value used to maintain state between the
	// authorization request and the callback.
	State string `json:"state"`

	// Nonce is a unique opaque value used to associate this attempt with
	// the id_token the provider issues.
	Nonce string `json:"nonce"`

	// ReturnTo is the relative path the user is sent back to after a
	// successful callback.
	ReturnTo string `json:"return_to"`

	// Expiration bounds this attempt to a single login round-trip.
	Expiration time.Time `json:"exp"`
}

// NewRequest creates a Request for a new authentication attempt with freshly
// generated state and nonce and the given lifetime.
func NewRequest(expireIn time.Duration, returnTo string) (*Request, error) {
	const op = "oidc.NewRequest"
	if expireIn <= 0 {
		return nil, fmt.Errorf("%s: expireIn not greater than zero: %w", op, ErrInvalidParameter)
	}
	state, err := NewID(WithPrefix("st"))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate a request's state: %w", op, err)
	}
	nonce, err := NewID(WithPrefix("n"))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate a request's nonce: %w", op, err)
	}
	if returnTo == "" {
		returnTo = "/"
	}
	return &Request{
		State:      state,
		Nonce:      nonce,
		ReturnTo:   returnTo,
		Expiration: time.Now().Add(expireIn),
	}, nil
}

// DefaultRequestExpirySkew defines a default time skew when checking a
// Request's expiration.
const DefaultRequestExpirySkew = 1 * time.Second

// IsExpired returns true if the request has expired. Supports the
// WithExpirySkew option and if none is provided it will use the
// DefaultRequestExpirySkew.
func (r *Request) IsExpired(opt ...Option) bool {
	opts := getReqOpts(opt...)
	return r.Expiration.Before(time.Now().Add(opts.withExpirySkew))
}

// reqOptions is the set of available options for Request functions
type reqOptions struct {
	withExpirySkew time.Duration
}

func reqDefaults() reqOptions {
	return reqOptions{
		withExpirySkew: DefaultRequestExpirySkew,
	}
}

// getReqOpts gets the request defaults and applies the opt overrides passed
// in.
func getReqOpts(opt ...Option) reqOptions {
	opts := reqDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
