// Package sqlite provides a Store backed by a sqlite database, for
// deployments where logout-token records must survive a process restart.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openidauth/rp/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS rp_records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER
);
`

// Store is a sqlite-backed store.Store.  Expired rows are evicted lazily on
// Get and swept opportunistically on Set, so stale logout-token records for
// subjects that never hit /logout don't accumulate without bound.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (creating if needed) the sqlite database at dsn and ensures the
// schema exists.
func New(dsn string) (*Store, error) {
	const op = "sqlite.New"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to open database: %w", op, err)
	}
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: unable to create schema: %w", op, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get implements store.Store.Get.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "sqlite.Get"
	var value []byte
	var expiresAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM rp_records WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, store.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if expiresAt.Valid && expiresAt.Int64 < time.Now().Unix() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM rp_records WHERE key = ?`, key)
		return nil, store.ErrNotFound
	}
	return value, nil
}

// Set implements store.Store.Set.
func (s *Store) Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	const op = "sqlite.Set"
	var exp sql.NullInt64
	if !expiresAt.IsZero() {
		exp = sql.NullInt64{Int64: expiresAt.Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rp_records (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, exp,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// sweep anything already past its expiry while we hold a write
	_, _ = s.db.ExecContext(ctx,
		`DELETE FROM rp_records WHERE expires_at IS NOT NULL AND expires_at < ?`, time.Now().Unix(),
	)
	return nil
}

// Destroy implements store.Store.Destroy.
func (s *Store) Destroy(ctx context.Context, key string) error {
	const op = "sqlite.Destroy"
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rp_records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
