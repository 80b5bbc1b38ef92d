// Package rp implements the relying party side of OpenID Connect for a
// server-side web application.  It mounts four routes on the host router:
//
//	GET  /login     redirects the browser to the provider's authorization
//	                endpoint and persists the attempt's state/nonce in a
//	                short-lived signed cookie
//	GET  /callback  processes query-string authorization responses, or
//	POST /callback  serves the auto-submitting repost page for flows whose
//	                result arrives in a URL fragment; processes form_post
//	                responses
//	GET  /logout    redirects to the provider's end-session endpoint when a
//	                logout token is on record, and always terminates the
//	                local session
//	GET  /session   diagnostic JSON view of the transient and authenticated
//	                session state
//
// The oidc subpackage holds the protocol core (issuer metadata cache,
// authorization URL construction, code exchange, id_token verification) and
// the store subpackage the key-value contract for session persistence.
package rp
