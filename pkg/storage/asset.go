package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sameerak/carbon-governance/pkg/tenant"
)

// Asset is a governed resource owned by one tenant.
type Asset struct {
	ID        string
	TenantID  tenant.ID
	Name      string
	Type      string
	Owner     string // tenant-qualified username of the creator
	Content   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssetStore persists governance assets. Every operation is scoped to the
// tenant carried in the context: assets of other tenants are invisible,
// lookups across tenants return ErrNotFound, and operations without a
// tenant fail with ErrNoTenant.
type AssetStore interface {
	SaveAsset(ctx context.Context, a *Asset) error
	GetAsset(ctx context.Context, id string) (*Asset, error)
	ListAssets(ctx context.Context) ([]*Asset, error)
	DeleteAsset(ctx context.Context, id string) error
}
