package storage

import (
	"context"

	"github.com/sameerak/carbon-governance/pkg/tenant"
)

// tenantKey is a private type for the tenant context key, preventing
// collisions with other packages.
type tenantKey struct{}

// SetTenant injects a tenant identifier into the context. The auth
// middleware calls this on successful authentication so that store
// operations downstream are scoped to the caller's tenant.
func SetTenant(ctx context.Context, id tenant.ID) context.Context {
	return context.WithValue(ctx, tenantKey{}, id)
}

// GetTenant extracts the tenant identifier from the context. The boolean
// reports whether a tenant was set.
func GetTenant(ctx context.Context) (tenant.ID, bool) {
	if v, ok := ctx.Value(tenantKey{}).(tenant.ID); ok {
		return v, true
	}
	return tenant.Invalid, false
}
