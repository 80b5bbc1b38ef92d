// Package store defines the async key-value contract the rp package uses
// for both the long-lived user sessions and the durable logout-token
// records, plus an in-memory implementation.  Concrete stores only need
// single-key get/set/destroy semantics; nothing in the rp core performs a
// read-modify-write it expects the store to arbitrate.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for keys with no live record.  Callers
// treat it as absence, not failure; any other error propagates unmodified.
var ErrNotFound = errors.New("store: not found")

// Store is a thin async key-value interface.  Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound when no live record
	// exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value for key.  A non-zero expiresAt bounds the
	// record's lifetime; the zero time means the record never expires on
	// its own.
	Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error

	// Destroy removes the record for key.  Destroying an absent key is not
	// an error.
	Destroy(ctx context.Context, key string) error
}
