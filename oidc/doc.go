// Package oidc provides the protocol core for a relying party
// authenticating users with OpenID Connect.  It supports the
// Authorization Code Flow, the Implicit Flow with form_post, and the
// hybrid "code id_token" combination.
//
// The package resolves and caches issuer metadata, builds authorization
// request URLs, exchanges authorization codes for tokens and verifies
// id_tokens against the issuer's published keys.  The HTTP surface that
// drives these primitives lives in the parent rp package.
package oidc
