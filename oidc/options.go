package oidc

import "time"

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		o(opts)
	}
}

// WithExpirySkew provides an optional expiry skew duration when checking a
// Request's expiration.
func WithExpirySkew(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*reqOptions); ok {
			o.withExpirySkew = d
		}
	}
}

// WithPrefix provides an optional prefix for a generated ID.
func WithPrefix(prefix string) Option {
	return func(o interface{}) {
		if o, ok := o.(*idOptions); ok {
			o.withPrefix = prefix
		}
	}
}

// WithIDLength provides an optional number of random bytes for a generated
// ID, before encoding.
func WithIDLength(n int) Option {
	return func(o interface{}) {
		if o, ok := o.(*idOptions); ok {
			o.withLength = n
		}
	}
}
