package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		issuer       string
		clientID     string
		clientSecret ClientSecret
		baseURL      string
		opt          []Option
		wantErr      bool
		wantIsErr    error
	}{
		{
			name: "valid-defaults", issuer: "https://idp.example", clientID: "123",
			baseURL: "https://myapp.com",
		},
		{
			name: "valid-code-flow", issuer: "https://idp.example", clientID: "123",
			clientSecret: "456", baseURL: "https://myapp.com",
			opt: []Option{WithResponseType(ResponseTypeCode)},
		},
		{
			name: "missing-client-id", issuer: "https://idp.example",
			baseURL: "https://myapp.com", wantErr: true, wantIsErr: ErrInvalidParameter,
		},
		{
			name: "missing-issuer", clientID: "123", baseURL: "https://myapp.com",
			wantErr: true, wantIsErr: ErrInvalidParameter,
		},
		{
			name: "bad-issuer-scheme", issuer: "ldap://idp.example", clientID: "123",
			baseURL: "https://myapp.com", wantErr: true, wantIsErr: ErrInvalidIssuer,
		},
		{
			name: "relative-base-url", issuer: "https://idp.example", clientID: "123",
			baseURL: "/app", wantErr: true, wantIsErr: ErrInvalidParameter,
		},
		{
			name: "code-without-secret", issuer: "https://idp.example", clientID: "123",
			baseURL: "https://myapp.com", opt: []Option{WithResponseType(ResponseTypeCode)},
			wantErr: true, wantIsErr: ErrInvalidParameter,
		},
		{
			name: "unsupported-response-type", issuer: "https://idp.example", clientID: "123",
			baseURL: "https://myapp.com", opt: []Option{WithResponseType("token")},
			wantErr: true, wantIsErr: ErrUnsupportedResponseType,
		},
		{
			name: "unsupported-alg", issuer: "https://idp.example", clientID: "123",
			baseURL: "https://myapp.com", opt: []Option{WithSupportedAlgs("HS256")},
			wantErr: true, wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewConfig(tt.issuer, tt.clientID, tt.clientSecret, tt.baseURL, tt.opt...)
			if tt.wantErr {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.NotNil(got)
		})
	}
}

func TestConfig_EffectiveResponseMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  Config
		want ResponseMode
	}{
		{"id-token-implies-form-post", Config{ResponseType: ResponseTypeIDToken}, ResponseModeFormPost},
		{"hybrid-implies-form-post", Config{ResponseType: ResponseTypeCodeIDToken}, ResponseModeFormPost},
		{"code-implies-nothing", Config{ResponseType: ResponseTypeCode}, ResponseModeUnset},
		{"none-implies-nothing", Config{ResponseType: ResponseTypeNone}, ResponseModeUnset},
		{"explicit-mode-wins", Config{ResponseType: ResponseTypeCode, ResponseMode: ResponseModeQuery}, ResponseModeQuery},
		{"disabled-omits-even-for-id-token", Config{ResponseType: ResponseTypeIDToken, DisableResponseMode: true}, ResponseModeUnset},
		{"disabled-beats-explicit", Config{ResponseMode: ResponseModeFormPost, DisableResponseMode: true}, ResponseModeUnset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.EffectiveResponseMode())
		})
	}
}

func TestConfig_RequestedScopes(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	c := Config{}
	assert.Equal([]string{"openid", "profile", "email"}, c.RequestedScopes())

	// a configured list replaces the default entirely
	c.Scopes = []string{"openid", "groups"}
	assert.Equal([]string{"openid", "groups"}, c.RequestedScopes())

	// duplicates and blanks are dropped
	c.Scopes = []string{"openid", "", "groups", "openid"}
	assert.Equal([]string{"openid", "groups"}, c.RequestedScopes())
}

func TestConfig_RedirectURL(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	assert.Equal("https://myapp.com/callback", (&Config{BaseURL: "https://myapp.com"}).RedirectURL())
	assert.Equal("https://myapp.com/callback", (&Config{BaseURL: "https://myapp.com/"}).RedirectURL())
}

func TestConfig_HTTPClient(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)

	c := &Config{}
	client, err := c.HTTPClient()
	require.NoError(err)
	assert.NotNil(client)

	c.ProviderCA = "not a pem"
	_, err = c.HTTPClient()
	assert.ErrorIs(err, ErrInvalidCACert)
}
