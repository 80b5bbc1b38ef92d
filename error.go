package rp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openidauth/rp/oidc"
)

// AuthenErrorResponse represents an OAuth2/OIDC error the provider reported
// on the callback.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#AuthError
type AuthenErrorResponse struct {
	Error       string
	Description string
	URI         string
}

func (r *AuthenErrorResponse) String() string {
	if r.Description == "" {
		return r.Error
	}
	return fmt.Sprintf("%s: %s", r.Error, r.Description)
}

// SuccessResponseFunc creates the http response for a successful callback,
// after the user session has been established.  The oidc.Request is the
// attempt that just completed (carrying the return-to path) and t holds the
// verified tokens; t is nil for the "none" response type.
type SuccessResponseFunc func(r *oidc.Request, t *oidc.Token, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc creates the http response when a callback fails.  It
// receives the state returned in the authorization response, the
// provider-reported error (if the provider rejected the authorization) and/or
// the error raised while processing the request.
type ErrorResponseFunc func(state string, respErr *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request)

// DefaultErrorResponse rejects provider-reported and validation failures
// with 401 and everything else (discovery, token endpoint, storage) with
// 500.  No session state has been committed by the time it runs.
func DefaultErrorResponse(_ string, respErr *AuthenErrorResponse, e error, w http.ResponseWriter, _ *http.Request) {
	if respErr != nil {
		http.Error(w, fmt.Sprintf("authorization failed: %s", respErr), http.StatusUnauthorized)
		return
	}
	switch {
	case errors.Is(e, oidc.ErrMissingState),
		errors.Is(e, oidc.ErrStateMismatch),
		errors.Is(e, oidc.ErrExpiredRequest),
		errors.Is(e, oidc.ErrInvalidToken),
		errors.Is(e, oidc.ErrInvalidNonce):
		http.Error(w, "authentication failed", http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
