package oidc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/square/go-jose.v2/jwt"
)

func testExchangeConfig(t *testing.T, tp *TestProvider, opt ...Option) *Config {
	t.Helper()
	opt = append([]Option{
		WithResponseType(ResponseTypeCode),
		WithSupportedAlgs(ES256),
		WithProviderCA(tp.CACert()),
	}, opt...)
	c, err := NewConfig(tp.Addr(), "test-rp", "fido", "https://example.com", opt...)
	require.NoError(t, err)
	return c
}

func TestIssuer_Exchange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tp := StartTestProvider(t)
	tp.SetClientCreds("test-rp", "fido")
	tp.SetExpectedAuthCode("test-code")
	tp.SetExpectedAuthNonce("test-nonce")

	cache := NewIssuerCache(testProviderClient(t, tp))
	issuer, err := cache.Resolve(ctx, tp.Addr())
	require.NoError(t, err)

	c := testExchangeConfig(t, tp)

	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tok, err := issuer.Exchange(ctx, c, "test-code", "test-nonce")
		require.NoError(err)
		require.NotNil(tok)
		assert.NotEmpty(tok.IDToken)
		assert.NotEmpty(tok.AccessToken)
		assert.True(tok.Valid())
	})

	t.Run("bad-code", func(t *testing.T) {
		_, err := issuer.Exchange(ctx, c, "wrong-code", "test-nonce")
		assert.ErrorIs(t, err, ErrTokenExchange)
	})

	t.Run("nonce-mismatch", func(t *testing.T) {
		_, err := issuer.Exchange(ctx, c, "test-code", "other-nonce")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, ErrInvalidNonce)
	})

	t.Run("empty-code", func(t *testing.T) {
		_, err := issuer.Exchange(ctx, c, "", "test-nonce")
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("missing-id-token", func(t *testing.T) {
		omitTP := StartTestProvider(t)
		omitTP.SetClientCreds("test-rp", "fido")
		omitTP.SetExpectedAuthCode("test-code")
		omitTP.SetExpectedAuthNonce("test-nonce")
		omitTP.OmitIDTokens()

		omitCache := NewIssuerCache(testProviderClient(t, omitTP))
		omitIssuer, err := omitCache.Resolve(ctx, omitTP.Addr())
		require.NoError(t, err)

		_, err = omitIssuer.Exchange(ctx, testExchangeConfig(t, omitTP), "test-code", "test-nonce")
		assert.ErrorIs(t, err, ErrMissingIDToken)
	})
}

func TestIssuer_VerifyIDToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tp := StartTestProvider(t)
	tp.SetClientCreds("test-rp", "fido")

	cache := NewIssuerCache(testProviderClient(t, tp))
	issuer, err := cache.Resolve(ctx, tp.Addr())
	require.NoError(t, err)

	c := testExchangeConfig(t, tp)

	t.Run("valid", func(t *testing.T) {
		raw := tp.SignIDToken("test-nonce", nil)
		assert.NoError(t, issuer.VerifyIDToken(ctx, c, IDToken(raw), "test-nonce"))
	})

	t.Run("wrong-signing-key", func(t *testing.T) {
		_, otherPriv := TestGenerateKeys(t)
		raw := TestSignJWT(t, otherPriv, jwt.Claims{
			Subject:  "alice@example.com",
			Issuer:   tp.Addr(),
			Audience: jwt.Audience{"test-rp"},
			Expiry:   jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}, map[string]interface{}{"nonce": "test-nonce"})

		err := issuer.VerifyIDToken(ctx, c, IDToken(raw), "test-nonce")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong-audience", func(t *testing.T) {
		audTP := StartTestProvider(t)
		audTP.SetClientCreds("test-rp", "fido")
		audTP.SetCustomAudience("someone-else")

		audCache := NewIssuerCache(testProviderClient(t, audTP))
		audIssuer, err := audCache.Resolve(ctx, audTP.Addr())
		require.NoError(t, err)

		raw := audTP.SignIDToken("test-nonce", nil)
		err = audIssuer.VerifyIDToken(ctx, testExchangeConfig(t, audTP), IDToken(raw), "test-nonce")
		assert.ErrorIs(t, err, ErrInvalidToken)

		// the additional audience makes the same token acceptable
		widened := testExchangeConfig(t, audTP, WithAudiences("someone-else"))
		assert.NoError(t, audIssuer.VerifyIDToken(ctx, widened, IDToken(raw), "test-nonce"))

		// widening to an unrelated audience still rejects it
		unrelated := testExchangeConfig(t, audTP, WithAudiences("nobody"))
		err = audIssuer.VerifyIDToken(ctx, unrelated, IDToken(raw), "test-nonce")
		assert.ErrorIs(t, err, ErrInvalidAudience)
	})

	t.Run("static-issuer-cannot-verify", func(t *testing.T) {
		raw := tp.SignIDToken("test-nonce", nil)
		err := testStaticIssuer().VerifyIDToken(ctx, c, IDToken(raw), "test-nonce")
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("empty-inputs", func(t *testing.T) {
		assert.ErrorIs(t, issuer.VerifyIDToken(ctx, c, "", "test-nonce"), ErrInvalidParameter)
		assert.ErrorIs(t, issuer.VerifyIDToken(ctx, c, "tok", ""), ErrInvalidParameter)
	})
}
