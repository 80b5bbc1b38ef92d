package oidc

import (
	"fmt"
	"strings"
)

// ResponseType is the closed set of authorization response types the relying
// party supports.
type ResponseType string

const (
	ResponseTypeCode        ResponseType = "code"
	ResponseTypeIDToken     ResponseType = "id_token"
	ResponseTypeCodeIDToken ResponseType = "code id_token"
	ResponseTypeNone        ResponseType = "none"
)

// ResponseMode determines how the provider returns authorization response
// parameters.  The zero value means the parameter is omitted from the
// authorization request entirely, letting the provider fall back to its own
// default (typically a query-string redirect).
type ResponseMode string

const (
	ResponseModeUnset    ResponseMode = ""
	ResponseModeQuery    ResponseMode = "query"
	ResponseModeFormPost ResponseMode = "form_post"
)

// flowPolicy maps a response type to its routing and default-response_mode
// policy, replacing scattered conditionals with one lookup table.
type flowPolicy struct {
	// defaultMode is applied when the configuration leaves response_mode
	// unset and hasn't disabled it.  Types whose response carries an
	// id_token default to form_post so the provider posts the
	// fragment-bearing result back instead of leaving it in a URL fragment
	// the server never sees.
	defaultMode ResponseMode

	// repostOnGet means a GET to the callback path serves the static HTML
	// page that reposts fragment parameters as a form body.
	repostOnGet bool
}

var flowPolicies = map[ResponseType]flowPolicy{
	ResponseTypeCode:        {defaultMode: ResponseModeUnset, repostOnGet: false},
	ResponseTypeNone:        {defaultMode: ResponseModeUnset, repostOnGet: false},
	ResponseTypeIDToken:     {defaultMode: ResponseModeFormPost, repostOnGet: true},
	ResponseTypeCodeIDToken: {defaultMode: ResponseModeFormPost, repostOnGet: true},
}

// Validate the response type against the supported set.
func (rt ResponseType) Validate() error {
	const op = "ResponseType.Validate"
	if _, ok := flowPolicies[rt]; !ok {
		return fmt.Errorf("%s: %q: %w", op, string(rt), ErrUnsupportedResponseType)
	}
	return nil
}

// IncludesCode reports whether the response type carries an authorization
// code that must be exchanged at the token endpoint.
func (rt ResponseType) IncludesCode() bool {
	return rt == ResponseTypeCode || rt == ResponseTypeCodeIDToken
}

// IncludesIDToken reports whether the response type carries an id_token
// directly in the authorization response.
func (rt ResponseType) IncludesIDToken() bool {
	return strings.Contains(string(rt), string(ResponseTypeIDToken))
}

// DefaultResponseMode returns the implied response mode for the response
// type when none is configured.
func (rt ResponseType) DefaultResponseMode() ResponseMode {
	return flowPolicies[rt].defaultMode
}

// RepostOnGet reports whether a GET to the callback path should serve the
// auto-submitting repost page for this response type.
func (rt ResponseType) RepostOnGet() bool {
	return flowPolicies[rt].repostOnGet
}

// Validate the response mode against the supported set.
func (rm ResponseMode) Validate() error {
	const op = "ResponseMode.Validate"
	switch rm {
	case ResponseModeUnset, ResponseModeQuery, ResponseModeFormPost:
		return nil
	default:
		return fmt.Errorf("%s: %q: %w", op, string(rm), ErrInvalidParameter)
	}
}
