// Package auth implements the request-authentication gate that fronts the
// governance REST API.
//
// Every request passes through the gate before resource dispatch. The gate
// decodes the Authorization header into a tagged Credential, resolves the
// caller's tenant from the tenant-qualified username, verifies the password
// against a tenant-scoped user store, and either admits the request with an
// authenticated identity in the request context or rejects it with a 401
// challenge naming the attempted scheme.
//
// The gate never produces a 5xx response: infrastructure failures in the
// tenant directory or the user store are logged and collapse to the same
// 401 challenge as bad credentials, so internal state is not leaked to
// clients.
package auth
