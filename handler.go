package rp

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/openidauth/rp/oidc"
	"github.com/openidauth/rp/store"
)

// DefaultLogoutTokenRetention bounds how long a durable logout-token record
// outlives the id_token it was minted from when the subject never hits
// /logout.
const DefaultLogoutTokenRetention = 24 * time.Hour

// Handler is the relying party's HTTP surface.  It is safe for concurrent
// use; the issuer cache is its only shared mutable state and resolution is
// collapsed to one in-flight discovery per issuer.
type Handler struct {
	cfg          *oidc.Config
	issuers      *oidc.IssuerCache
	sessions     store.Store
	logoutTokens store.Store
	cookieKey    []byte
	retention    time.Duration
	logger       hclog.Logger
	successFn    SuccessResponseFunc
	errorFn      ErrorResponseFunc
	router       chi.Router
}

// New creates a Handler for the given relying party config.  Without
// options it keeps sessions and logout tokens in memory and signs cookies
// with a random per-process key, which is fine for a single instance but
// won't survive restarts or spread across replicas.
//
// Supported options: WithSessionStore, WithLogoutTokenStore, WithCookieKey,
// WithIssuerCache, WithLogoutTokenRetention, WithSuccessResponse,
// WithErrorResponse
func New(c *oidc.Config, opt ...Option) (*Handler, error) {
	const op = "rp.New"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, oidc.ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := getHandlerOpts(opt...)

	h := &Handler{
		cfg:          c,
		issuers:      opts.withIssuerCache,
		sessions:     opts.withSessionStore,
		logoutTokens: opts.withLogoutTokenStore,
		cookieKey:    opts.withCookieKey,
		retention:    opts.withRetention,
		logger:       c.Logger,
		successFn:    opts.withSuccessFn,
		errorFn:      opts.withErrorFn,
	}
	if h.logger == nil {
		h.logger = hclog.NewNullLogger()
	}
	if h.issuers == nil {
		client, err := c.HTTPClient()
		if err != nil {
			return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
		}
		h.issuers = oidc.NewIssuerCache(client)
	}
	if h.sessions == nil {
		h.sessions = store.NewMemStore()
	}
	if h.logoutTokens == nil {
		h.logoutTokens = store.NewMemStore()
	}
	if len(h.cookieKey) == 0 {
		key, err := oidc.NewID(oidc.WithIDLength(32))
		if err != nil {
			return nil, fmt.Errorf("%s: unable to generate a cookie key: %w", op, err)
		}
		h.cookieKey = []byte(key)
		h.logger.Warn("no cookie key configured, generated a per-process key; sessions will not survive a restart")
	}
	if h.retention == 0 {
		h.retention = DefaultLogoutTokenRetention
	}
	if h.successFn == nil {
		h.successFn = h.defaultSuccessResponse
	}
	if h.errorFn == nil {
		h.errorFn = DefaultErrorResponse
	}
	h.router = h.routes()
	return h, nil
}

// routes mounts the auth routes.  The callback is reachable by both
// methods: POST always processes an authorization response, while GET
// either processes one (query-mode flows) or serves the repost page
// (fragment/form_post flows), per the response type's policy.
func (h *Handler) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", h.login)
	r.Post(oidc.CallbackPath, h.callback)
	if h.cfg.EffectiveResponseType().RepostOnGet() {
		r.Get(oidc.CallbackPath, h.repost)
	} else {
		r.Get(oidc.CallbackPath, h.callback)
	}
	r.Get("/logout", h.logout)
	r.Get("/session", h.session)
	return r
}

// ServeHTTP implements http.Handler so the Handler can be mounted directly
// on a host router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Issuers exposes the handler's issuer cache so it can be shared across
// handlers or pre-populated with statically configured issuers.
func (h *Handler) Issuers() *oidc.IssuerCache {
	return h.issuers
}

// defaultSuccessResponse redirects the authenticated browser back to the
// path captured at login initiation.
func (h *Handler) defaultSuccessResponse(r *oidc.Request, _ *oidc.Token, w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, sanitizeReturnTo(r.ReturnTo), http.StatusSeeOther)
}

// sanitizeReturnTo keeps redirects on-site: only rooted, non-scheme-relative
// paths pass through.
func sanitizeReturnTo(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	if len(p) > 1 && p[1] == '/' {
		return "/"
	}
	return p
}

// Option defines a common functional options type
type Option func(interface{})

// handlerOptions is the set of available options for New
type handlerOptions struct {
	withSessionStore     store.Store
	withLogoutTokenStore store.Store
	withCookieKey        []byte
	withIssuerCache      *oidc.IssuerCache
	withRetention        time.Duration
	withSuccessFn        SuccessResponseFunc
	withErrorFn          ErrorResponseFunc
}

func getHandlerOpts(opt ...Option) handlerOptions {
	opts := handlerOptions{}
	for _, o := range opt {
		o(&opts)
	}
	return opts
}

// WithSessionStore provides the store for long-lived user sessions.
func WithSessionStore(s store.Store) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withSessionStore = s
		}
	}
}

// WithLogoutTokenStore provides the store for durable logout-token records.
func WithLogoutTokenStore(s store.Store) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withLogoutTokenStore = s
		}
	}
}

// WithCookieKey provides the HMAC key for signing the transient request and
// session cookies.  Configure the same key on every replica.
func WithCookieKey(key []byte) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withCookieKey = key
		}
	}
}

// WithIssuerCache provides a shared issuer metadata cache, so several
// handlers in one process perform discovery once per issuer.
func WithIssuerCache(c *oidc.IssuerCache) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withIssuerCache = c
		}
	}
}

// WithLogoutTokenRetention bounds how long logout-token records are kept
// past their id_token's expiry.
func WithLogoutTokenRetention(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withRetention = d
		}
	}
}

// WithSuccessResponse overrides the response written after a successful
// callback.
func WithSuccessResponse(fn SuccessResponseFunc) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withSuccessFn = fn
		}
	}
}

// WithErrorResponse overrides the response written when a callback fails.
func WithErrorResponse(fn ErrorResponseFunc) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withErrorFn = fn
		}
	}
}
