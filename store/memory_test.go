package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("get-set-destroy", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := NewMemStore()

		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(err, ErrNotFound)

		require.NoError(s.Set(ctx, "k", []byte("v"), time.Time{}))
		got, err := s.Get(ctx, "k")
		require.NoError(err)
		assert.Equal([]byte("v"), got)

		require.NoError(s.Destroy(ctx, "k"))
		_, err = s.Get(ctx, "k")
		assert.ErrorIs(err, ErrNotFound)

		// destroying an absent key is not an error
		assert.NoError(s.Destroy(ctx, "k"))
	})

	t.Run("overwrite", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := NewMemStore()

		require.NoError(s.Set(ctx, "k", []byte("one"), time.Time{}))
		require.NoError(s.Set(ctx, "k", []byte("two"), time.Time{}))
		got, err := s.Get(ctx, "k")
		require.NoError(err)
		assert.Equal([]byte("two"), got)
		assert.Equal(1, s.Len())
	})

	t.Run("expiry", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := NewMemStore()

		require.NoError(s.Set(ctx, "expired", []byte("v"), time.Now().Add(-time.Second)))
		require.NoError(s.Set(ctx, "live", []byte("v"), time.Now().Add(time.Hour)))

		_, err := s.Get(ctx, "expired")
		assert.ErrorIs(err, ErrNotFound)
		_, err = s.Get(ctx, "live")
		assert.NoError(err)

		// the expired record was evicted by the failed Get
		assert.Equal(1, s.Len())
	})

	t.Run("value-isolation", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := NewMemStore()

		in := []byte("original")
		require.NoError(s.Set(ctx, "k", in, time.Time{}))
		in[0] = 'X'

		got, err := s.Get(ctx, "k")
		require.NoError(err)
		assert.Equal([]byte("original"), got)

		got[0] = 'Y'
		again, err := s.Get(ctx, "k")
		require.NoError(err)
		assert.Equal([]byte("original"), again)
	})
}
