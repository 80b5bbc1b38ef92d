package oidc

import (
	"encoding/base64"
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// DefaultIDLength is the number of random bytes in a generated ID before
// encoding, which keeps state and nonce values well above the 128 bits of
// entropy required for them to be unguessable.
const DefaultIDLength = 20

// NewID generates an opaque ID from a cryptographically secure random
// source, encoded so it is safe to place in URLs and cookies.  The result is
// suitable for a request State or Nonce.
//
// Supported options: WithPrefix, WithIDLength
func NewID(opt ...Option) (string, error) {
	const op = "oidc.NewID"
	opts := getIDOpts(opt...)
	data, err := uuid.GenerateRandomBytes(opts.withLength)
	if err != nil {
		return "", fmt.Errorf("%s: unable to read random bytes: %w", op, ErrIDGeneratorFailed)
	}
	id := base64.RawURLEncoding.EncodeToString(data)
	if opts.withPrefix != "" {
		return fmt.Sprintf("%s_%s", opts.withPrefix, id), nil
	}
	return id, nil
}

// idOptions is the set of available options for NewID
type idOptions struct {
	withPrefix string
	withLength int
}

// idDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func idDefaults() idOptions {
	return idOptions{
		withLength: DefaultIDLength,
	}
}

// getIDOpts gets the defaults and applies the opt overrides passed in.
func getIDOpts(opt ...Option) idOptions {
	opts := idDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
