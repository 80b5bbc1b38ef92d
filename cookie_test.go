package rp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openidauth/rp/oidc"
)

func TestSignVerifyValue(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	key := []byte("0123456789abcdef0123456789abcdef")

	signed := signValue(key, []byte(`{"hello":"world"}`))
	payload, err := verifyValue(key, signed)
	require.NoError(err)
	assert.Equal(`{"hello":"world"}`, string(payload))

	// tampering with either part invalidates the value
	_, err = verifyValue(key, "x"+signed)
	assert.Error(err)
	_, err = verifyValue(key, signed+"x")
	assert.Error(err)
	_, err = verifyValue(key, "no-separator")
	assert.Error(err)

	// a different key never verifies
	_, err = verifyValue([]byte("another-key"), signed)
	assert.Error(err)
}

func testCookieHandler(t *testing.T, opt ...oidc.Option) *Handler {
	t.Helper()
	c, err := oidc.NewConfig("https://idp.example", "test-rp", "fido", "https://example.com", opt...)
	require.NoError(t, err)
	h, err := New(c, WithCookieKey([]byte("0123456789abcdef0123456789abcdef")))
	require.NoError(t, err)
	return h
}

func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/callback", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestRequestCookieRoundTrip(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	h := testCookieHandler(t)

	r, err := oidc.NewRequest(5*time.Minute, "/dashboard")
	require.NoError(err)

	rec := httptest.NewRecorder()
	require.NoError(h.writeRequestCookie(rec, r))

	// form_post flows need the cookie on a cross-site POST
	set := rec.Result().Cookies()
	require.Len(set, 1)
	assert.Equal(http.SameSiteNoneMode, set[0].SameSite)
	assert.True(set[0].HttpOnly)
	assert.True(set[0].Secure)

	got, err := h.readRequestCookie(requestWithCookies(t, rec))
	require.NoError(err)
	assert.Equal(r.State, got.State)
	assert.Equal(r.Nonce, got.Nonce)
	assert.Equal("/dashboard", got.ReturnTo)
}

func TestReadRequestCookie_Failures(t *testing.T) {
	t.Parallel()
	h := testCookieHandler(t)

	t.Run("absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/callback", nil)
		_, err := h.readRequestCookie(req)
		assert.ErrorIs(t, err, oidc.ErrMissingState)
	})

	t.Run("tampered", func(t *testing.T) {
		require := require.New(t)
		r, err := oidc.NewRequest(5*time.Minute, "/")
		require.NoError(err)
		rec := httptest.NewRecorder()
		require.NoError(h.writeRequestCookie(rec, r))

		req := httptest.NewRequest(http.MethodPost, "/callback", nil)
		c := rec.Result().Cookies()[0]
		c.Value = "tampered." + c.Value
		req.AddCookie(c)
		_, err = h.readRequestCookie(req)
		assert.ErrorIs(t, err, oidc.ErrMissingState)
	})

	t.Run("expired", func(t *testing.T) {
		require := require.New(t)
		r, err := oidc.NewRequest(time.Millisecond, "/")
		require.NoError(err)
		rec := httptest.NewRecorder()
		require.NoError(h.writeRequestCookie(rec, r))

		_, err = h.readRequestCookie(requestWithCookies(t, rec))
		assert.ErrorIs(t, err, oidc.ErrMissingState)
	})
}

func TestSessionCookie(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	h := testCookieHandler(t, oidc.WithResponseType(oidc.ResponseTypeCode))

	rec := httptest.NewRecorder()
	h.writeSessionCookie(rec, "s_1234")

	set := rec.Result().Cookies()
	require.Len(set, 1)
	assert.Equal(http.SameSiteLaxMode, set[0].SameSite)
	assert.True(set[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(set[0])
	assert.Equal("s_1234", h.readSessionCookie(req))

	// a forged value reads as anonymous
	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(&http.Cookie{Name: "rp_session", Value: "forged.value"})
	assert.Equal("", h.readSessionCookie(req))
}

func TestRequestCookieSameSite_QueryFlows(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	h := testCookieHandler(t, oidc.WithResponseType(oidc.ResponseTypeCode))

	r, err := oidc.NewRequest(5*time.Minute, "/")
	require.NoError(err)
	rec := httptest.NewRecorder()
	require.NoError(h.writeRequestCookie(rec, r))

	set := rec.Result().Cookies()
	require.Len(set, 1)
	assert.Equal(http.SameSiteLaxMode, set[0].SameSite)
}
