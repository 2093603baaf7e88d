// Package api implements the governance REST resource handlers and the
// JSON error envelope shared across the HTTP surface.
//
// Handlers run behind the authentication gate and read the caller's
// identity from the request context; a request that reaches a handler
// without an identity is a wiring bug and is answered with a 500.
// Assets are scoped to the authenticated tenant: a handler can never
// see or touch another tenant's assets.
package api
