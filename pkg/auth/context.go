package auth

import (
	"context"

	"github.com/sameerak/carbon-governance/pkg/tenant"
)

// Identity represents an authenticated caller for the remainder of one
// request. Username keeps the original, tenant-qualified form the client
// sent.
type Identity struct {
	Username     string
	TenantID     tenant.ID
	TenantDomain string
}

// identityKey is a private type for the identity context key.
type identityKey struct{}

// SetIdentity stores the authenticated identity in the context.
func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the authenticated identity.
// Returns nil if the request did not pass the gate.
func IdentityFromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}
