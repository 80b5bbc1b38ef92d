package oidc

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/openidauth/rp/internal/strutils"
)

// ClientSecret is the relying party's secret.  Its String and JSON
// representations are redacted so it never lands in logs.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (s ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (s ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// Alg represents asymmetric signing algorithms supported for id_token
// verification.
type Alg string

const (
	RS256 Alg = "RS256"
	RS384 Alg = "RS384"
	RS512 Alg = "RS512"
	ES256 Alg = "ES256"
	ES384 Alg = "ES384"
	ES512 Alg = "ES512"
	PS256 Alg = "PS256"
	PS384 Alg = "PS384"
	PS512 Alg = "PS512"
	EdDSA Alg = "EdDSA"
)

var supportedAlgorithms = map[Alg]bool{
	RS256: true,
	RS384: true,
	RS512: true,
	ES256: true,
	ES384: true,
	ES512: true,
	PS256: true,
	PS384: true,
	PS512: true,
	EdDSA: true,
}

// DefaultScopes are requested when the configuration doesn't name any.  A
// caller-supplied list replaces this default entirely, it is not merged.
var DefaultScopes = []string{"openid", "profile", "email"}

// DefaultRequestExpiry bounds the lifetime of one login round-trip: the
// authentication request created at /login must complete its callback within
// this window.
const DefaultRequestExpiry = 10 * time.Minute

// CallbackPath is appended to the configured base URL to form the
// redirect_uri sent to the provider.
const CallbackPath = "/callback"

// Config represents the configuration for a relying party authenticating
// users against one OpenID Connect provider.
type Config struct {
	// ClientID is the relying party id registered with the provider.
	ClientID string

	// ClientSecret is the relying party secret.  Only required for response
	// types that include an authorization code.
	ClientSecret ClientSecret

	// Issuer is a case-sensitive URL using the https scheme (http is
	// accepted for tests/dev) that contains scheme, host, and optionally,
	// port number and path components and no query or fragment components.
	Issuer string

	// BaseURL is the externally visible base URL of the application.  The
	// redirect_uri presented to the provider is always BaseURL + "/callback".
	BaseURL string

	// Scopes is the complete list of scopes to request.  When empty,
	// DefaultScopes is used.
	Scopes []string

	// ResponseType selects the authorization flow.  Defaults to
	// ResponseTypeIDToken.
	ResponseType ResponseType

	// ResponseMode overrides the response type's implied mode.
	ResponseMode ResponseMode

	// DisableResponseMode omits the response_mode parameter from the
	// authorization request entirely, regardless of any implied default, so
	// the provider falls back to its own.
	DisableResponseMode bool

	// AuthParams are additional authorization request parameters.  They
	// never override the protocol-critical parameters this package computes
	// (client_id, redirect_uri, state, nonce, scope, response_type).
	AuthParams map[string]string

	// Audiences is an optional list of case-sensitive strings accepted when
	// verifying an id_token's "aud" claim, in addition to ClientID.
	Audiences []string

	// SupportedSigningAlgs restricts the id_token signing algorithms
	// accepted during verification.  Defaults to RS256.
	SupportedSigningAlgs []Alg

	// RequestExpiry bounds one login round-trip.  Defaults to
	// DefaultRequestExpiry.
	RequestExpiry time.Duration

	// ProviderCA is an optional CA cert PEM to use when sending requests to
	// the provider.
	ProviderCA string

	// Logger is an optional logger.
	Logger hclog.Logger
}

// NewConfig composes a new relying party config.
//
// Supported options: WithScopes, WithAudiences, WithProviderCA, WithLogger,
// WithResponseType, WithResponseMode, WithoutResponseMode, WithAuthParams,
// WithSupportedAlgs, WithRequestExpiry
func NewConfig(issuer string, clientID string, clientSecret ClientSecret, baseURL string, opt ...Option) (*Config, error) {
	const op = "oidc.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		Issuer:               issuer,
		ClientID:             clientID,
		ClientSecret:         clientSecret,
		BaseURL:              baseURL,
		Scopes:               opts.withScopes,
		ResponseType:         opts.withResponseType,
		ResponseMode:         opts.withResponseMode,
		DisableResponseMode:  opts.withoutResponseMode,
		AuthParams:           opts.withAuthParams,
		Audiences:            opts.withAudiences,
		SupportedSigningAlgs: opts.withSupportedAlgs,
		RequestExpiry:        opts.withRequestExpiry,
		ProviderCA:           opts.withProviderCA,
		Logger:               opts.withLogger,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid relying party config: %w", op, err)
	}
	return c, nil
}

// Validate the config.  It verifies the issuer and base URLs are well
// formed, but it doesn't verify the issuer is discoverable via an http
// request.  All problems found are accumulated and returned together.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.ClientID == "" {
		result = multierror.Append(result, fmt.Errorf("client id is empty: %w", ErrInvalidParameter))
	}
	if c.Issuer == "" {
		result = multierror.Append(result, fmt.Errorf("issuer is empty: %w", ErrInvalidParameter))
	} else if u, err := url.Parse(c.Issuer); err != nil || !strutils.StrListContains([]string{"https", "http"}, u.Scheme) {
		result = multierror.Append(result, fmt.Errorf("issuer %s scheme is not http or https: %w", c.Issuer, ErrInvalidIssuer))
	}
	if c.BaseURL == "" {
		result = multierror.Append(result, fmt.Errorf("base URL is empty: %w", ErrInvalidParameter))
	} else if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() {
		result = multierror.Append(result, fmt.Errorf("base URL %s is not absolute: %w", c.BaseURL, ErrInvalidParameter))
	}
	if err := c.responseType().Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.ResponseMode.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.responseType().IncludesCode() && c.ClientSecret == "" {
		result = multierror.Append(result, fmt.Errorf("client secret is required for response type %q: %w", c.responseType(), ErrInvalidParameter))
	}
	for _, a := range c.SupportedSigningAlgs {
		if !supportedAlgorithms[a] {
			result = multierror.Append(result, fmt.Errorf("unsupported algorithm %s: %w", a, ErrInvalidParameter))
		}
	}
	if c.RequestExpiry < 0 {
		result = multierror.Append(result, fmt.Errorf("request expiry is negative: %w", ErrInvalidParameter))
	}
	if result != nil {
		return fmt.Errorf("%s: %w", op, result.ErrorOrNil())
	}
	return nil
}

// RedirectURL is the redirect_uri presented to the provider on every
// authorization request.
func (c *Config) RedirectURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + CallbackPath
}

func (c *Config) responseType() ResponseType {
	if c.ResponseType == "" {
		return ResponseTypeIDToken
	}
	return c.ResponseType
}

// EffectiveResponseType resolves the configured response type, applying the
// id_token default.
func (c *Config) EffectiveResponseType() ResponseType {
	return c.responseType()
}

// EffectiveResponseMode resolves the response_mode the authorization request
// should carry.  ResponseModeUnset means the parameter is omitted.
func (c *Config) EffectiveResponseMode() ResponseMode {
	if c.DisableResponseMode {
		return ResponseModeUnset
	}
	if c.ResponseMode != ResponseModeUnset {
		return c.ResponseMode
	}
	return c.responseType().DefaultResponseMode()
}

// RequestedScopes returns the scopes for the authorization request, with
// empty and duplicate entries removed.  The configured list replaces the
// default entirely.
func (c *Config) RequestedScopes() []string {
	if len(c.Scopes) == 0 {
		return DefaultScopes
	}
	return strutils.RemoveDuplicatesStable(c.Scopes, false)
}

// SigningAlgs returns the accepted id_token signing algorithms as strings,
// defaulting to RS256.
func (c *Config) SigningAlgs() []string {
	if len(c.SupportedSigningAlgs) == 0 {
		return []string{string(RS256)}
	}
	algs := make([]string, 0, len(c.SupportedSigningAlgs))
	for _, a := range c.SupportedSigningAlgs {
		algs = append(algs, string(a))
	}
	return algs
}

// Expiry returns the configured request expiry, applying the default.
func (c *Config) Expiry() time.Duration {
	if c.RequestExpiry == 0 {
		return DefaultRequestExpiry
	}
	return c.RequestExpiry
}

// HTTPClient creates an http client for the provider, trusting the optional
// ProviderCA pem instead of the system chain when one is configured.
func (c *Config) HTTPClient() (*http.Client, error) {
	const op = "Config.HTTPClient"
	tr := cleanhttp.DefaultPooledTransport()
	if c.ProviderCA != "" {
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM([]byte(c.ProviderCA)); !ok {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		tr.TLSClientConfig = &tls.Config{
			RootCAs: certPool,
		}
	}
	return &http.Client{
		Transport: tr,
	}, nil
}

// configOptions is the set of available options for NewConfig
type configOptions struct {
	withScopes          []string
	withAudiences       []string
	withProviderCA      string
	withLogger          hclog.Logger
	withResponseType    ResponseType
	withResponseMode    ResponseMode
	withoutResponseMode bool
	withAuthParams      map[string]string
	withSupportedAlgs   []Alg
	withRequestExpiry   time.Duration
}

func configDefaults() configOptions {
	return configOptions{}
}

// getConfigOpts gets the defaults and applies the opt overrides passed in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithScopes provides the complete list of scopes to request, replacing
// DefaultScopes.
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withScopes = scopes
		}
	}
}

// WithAudiences provides an optional list of additional audiences accepted
// when verifying an id_token's "aud" claim.
func WithAudiences(auds ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAudiences = auds
		}
	}
}

// WithProviderCA provides an optional CA cert PEM for requests to the
// provider.
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withLogger = l
		}
	}
}

// WithResponseType selects the authorization flow.
func WithResponseType(rt ResponseType) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withResponseType = rt
		}
	}
}

// WithResponseMode overrides the response type's implied response mode.
func WithResponseMode(rm ResponseMode) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withResponseMode = rm
		}
	}
}

// WithoutResponseMode omits response_mode from the authorization request
// entirely so the provider uses its own default.
func WithoutResponseMode() Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withoutResponseMode = true
		}
	}
}

// WithAuthParams provides additional authorization request parameters.
func WithAuthParams(params map[string]string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAuthParams = params
		}
	}
}

// WithSupportedAlgs restricts the accepted id_token signing algorithms.
func WithSupportedAlgs(algs ...Alg) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withSupportedAlgs = algs
		}
	}
}

// WithRequestExpiry bounds the lifetime of one login round-trip.
func WithRequestExpiry(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withRequestExpiry = d
		}
	}
}
