package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	goidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Issuer is the resolved metadata for one OpenID provider.  It is immutable
// once resolved and safe for concurrent use.
type Issuer struct {
	name             string
	authorizationURL string
	tokenURL         string
	endSessionURL    string
	provider         *goidc.Provider
	client           *http.Client
}

// Name returns the issuer identifier, used verbatim in durable session
// token keys.
func (i *Issuer) Name() string { return i.name }

// AuthorizationEndpoint returns the provider's authorization endpoint URL.
func (i *Issuer) AuthorizationEndpoint() string { return i.authorizationURL }

// TokenEndpoint returns the provider's token endpoint URL.
func (i *Issuer) TokenEndpoint() string { return i.tokenURL }

// EndSessionEndpoint returns the provider's end-session (logout) endpoint
// URL, or "" when the provider doesn't advertise one.
func (i *Issuer) EndSessionEndpoint() string { return i.endSessionURL }

// Endpoint returns the issuer's endpoints in oauth2 form, for code exchange.
func (i *Issuer) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  i.authorizationURL,
		TokenURL: i.tokenURL,
	}
}

// NewStaticIssuer builds an Issuer from known endpoints without discovery.
// It supports providers that don't publish metadata, and lets tests exercise
// URL construction offline.  An Issuer built this way cannot verify
// id_tokens (it has no key set), so it only serves the authorization and
// end-session request builders.
func NewStaticIssuer(name, authorizationURL, tokenURL, endSessionURL string) *Issuer {
	return &Issuer{
		name:             name,
		authorizationURL: authorizationURL,
		tokenURL:         tokenURL,
		endSessionURL:    endSessionURL,
	}
}

// IssuerCache lazily resolves and memoizes issuer metadata for the process
// lifetime.  Successful resolutions are never invalidated; failed ones are
// not cached, so the next request retries discovery.  Concurrent first
// resolutions of the same issuer collapse into a single in-flight discovery
// request.
type IssuerCache struct {
	client *http.Client

	mu      sync.RWMutex
	issuers map[string]*Issuer
	group   singleflight.Group
}

// NewIssuerCache creates an empty cache whose discovery requests use the
// given http client.  A nil client falls back to http.DefaultClient.
func NewIssuerCache(client *http.Client) *IssuerCache {
	if client == nil {
		client = http.DefaultClient
	}
	return &IssuerCache{
		client:  client,
		issuers: map[string]*Issuer{},
	}
}

// Register adds a pre-resolved issuer to the cache, keyed by its name.  It
// supports static configuration and tests; Resolve will return it without
// any discovery request.
func (c *IssuerCache) Register(i *Issuer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i.client == nil {
		i.client = c.client
	}
	c.issuers[i.name] = i
}

// Resolve returns the metadata for the issuer URL, fetching and memoizing
// it on first use.  All callers racing on the first resolution share one
// discovery request and receive the same result.
func (c *IssuerCache) Resolve(ctx context.Context, issuer string) (*Issuer, error) {
	const op = "IssuerCache.Resolve"
	c.mu.RLock()
	i, ok := c.issuers[issuer]
	c.mu.RUnlock()
	if ok {
		return i, nil
	}

	v, err, _ := c.group.Do(issuer, func() (interface{}, error) {
		// another flight may have populated the cache between the read
		// above and acquiring the flight
		c.mu.RLock()
		i, ok := c.issuers[issuer]
		c.mu.RUnlock()
		if ok {
			return i, nil
		}
		resolved, err := c.discover(ctx, issuer)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.issuers[issuer] = resolved
		c.mu.Unlock()
		return resolved, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: unable to resolve issuer %q: %w", op, issuer, errors.Join(ErrDiscovery, err))
	}
	return v.(*Issuer), nil
}

func (c *IssuerCache) discover(ctx context.Context, issuer string) (*Issuer, error) {
	p, err := goidc.NewProvider(goidc.ClientContext(ctx, c.client), issuer)
	if err != nil {
		return nil, err
	}
	// end_session_endpoint is outside the set go-oidc models directly
	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := p.Claims(&extra); err != nil {
		return nil, fmt.Errorf("malformed discovery document: %w", err)
	}
	ep := p.Endpoint()
	return &Issuer{
		name:             issuer,
		authorizationURL: ep.AuthURL,
		tokenURL:         ep.TokenURL,
		endSessionURL:    extra.EndSessionEndpoint,
		provider:         p,
		client:           c.client,
	}, nil
}
