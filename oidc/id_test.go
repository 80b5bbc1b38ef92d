package oidc

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Parallel()
	t.Run("no-prefix", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		id, err := NewID()
		require.NoError(err)
		assert.NotEmpty(id)
		// url- and cookie-safe: encoding must round-trip untouched
		assert.Equal(id, url.QueryEscape(id))
	})
	t.Run("with-prefix", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		id, err := NewID(WithPrefix("st"))
		require.NoError(err)
		assert.True(strings.HasPrefix(id, "st_"))
	})
	t.Run("with-length", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		id, err := NewID(WithIDLength(32))
		require.NoError(err)
		// 32 bytes base64url encode to 43 chars
		assert.Len(id, 43)
	})
	t.Run("unique", func(t *testing.T) {
		require := require.New(t)
		seen := map[string]bool{}
		for i := 0; i < 1000; i++ {
			id, err := NewID()
			require.NoError(err)
			require.False(seen[id], "generated a duplicate id")
			seen[id] = true
		}
	})
}
