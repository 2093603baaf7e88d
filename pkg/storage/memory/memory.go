// Package memory provides in-memory implementations of the tenant
// directory, the credential verifier, and the asset store for development
// and tests. All data is lost when the process exits.
package memory

import (
	"context"
	"crypto/subtle"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/sameerak/carbon-governance/pkg/auth"
	"github.com/sameerak/carbon-governance/pkg/storage"
	"github.com/sameerak/carbon-governance/pkg/tenant"
)

// Directory is an in-memory tenant directory seeded with the super tenant.
type Directory struct {
	mu      sync.RWMutex
	domains map[string]tenant.ID
}

// Ensure Directory implements auth.TenantDirectory at compile time.
var _ auth.TenantDirectory = (*Directory)(nil)

// NewDirectory creates a directory containing only the super tenant.
func NewDirectory() *Directory {
	return &Directory{domains: map[string]tenant.ID{
		tenant.SuperDomain: tenant.SuperID,
	}}
}

// Register adds or replaces a tenant domain mapping.
func (d *Directory) Register(domain string, id tenant.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.domains[strings.ToLower(domain)] = id
}

// ResolveTenantID looks up a tenant domain. Unknown domains resolve to
// tenant.Invalid with a nil error.
func (d *Directory) ResolveTenantID(_ context.Context, domain string) (tenant.ID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, ok := d.domains[strings.ToLower(domain)]; ok {
		return id, nil
	}
	return tenant.Invalid, nil
}

// UserEntry describes one user in the static user store. PasswordHash is a
// bcrypt hash; Password is a plaintext fallback for development setups.
// When both are set the hash wins.
type UserEntry struct {
	Local        string
	TenantID     tenant.ID
	Password     string
	PasswordHash string
}

type userKey struct {
	local string
	id    tenant.ID
}

// UserStore verifies passwords against a static set of users.
type UserStore struct {
	users map[userKey]UserEntry
}

// Ensure UserStore implements auth.CredentialVerifier at compile time.
var _ auth.CredentialVerifier = (*UserStore)(nil)

// NewUserStore creates a user store from static entries.
func NewUserStore(entries []UserEntry) *UserStore {
	s := &UserStore{users: make(map[userKey]UserEntry, len(entries))}
	for _, e := range entries {
		s.users[userKey{local: e.Local, id: e.TenantID}] = e
	}
	return s
}

// VerifyPassword checks the password for a local name within one tenant.
// Unknown users are a mismatch, not an error.
func (s *UserStore) VerifyPassword(_ context.Context, localName, password string, id tenant.ID) (bool, error) {
	e, ok := s.users[userKey{local: localName, id: id}]
	if !ok {
		return false, nil
	}
	if e.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) == nil, nil
	}
	return subtle.ConstantTimeCompare([]byte(e.Password), []byte(password)) == 1, nil
}

// AssetStore is a mutex-guarded in-memory asset store.
type AssetStore struct {
	mu     sync.RWMutex
	assets map[string]*storage.Asset
}

// Ensure AssetStore implements storage.AssetStore at compile time.
var _ storage.AssetStore = (*AssetStore)(nil)

// NewAssetStore creates an empty asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{assets: make(map[string]*storage.Asset)}
}

// SaveAsset persists an asset for the tenant in the context.
func (s *AssetStore) SaveAsset(ctx context.Context, a *storage.Asset) error {
	id, ok := storage.GetTenant(ctx)
	if !ok {
		return storage.ErrNoTenant
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[a.ID]; exists {
		return storage.ErrConflict
	}

	stored := *a
	stored.TenantID = id
	s.assets[a.ID] = &stored
	return nil
}

// GetAsset retrieves an asset by ID. Assets of other tenants are reported
// as ErrNotFound.
func (s *AssetStore) GetAsset(ctx context.Context, id string) (*storage.Asset, error) {
	tid, ok := storage.GetTenant(ctx)
	if !ok {
		return nil, storage.ErrNoTenant
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.assets[id]
	if !exists || a.TenantID != tid {
		return nil, storage.ErrNotFound
	}

	cp := *a
	return &cp, nil
}

// ListAssets returns the tenant's assets, newest first.
func (s *AssetStore) ListAssets(ctx context.Context) ([]*storage.Asset, error) {
	tid, ok := storage.GetTenant(ctx)
	if !ok {
		return nil, storage.ErrNoTenant
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.Asset
	for _, a := range s.assets {
		if a.TenantID != tid {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteAsset removes an asset owned by the tenant in the context.
func (s *AssetStore) DeleteAsset(ctx context.Context, id string) error {
	tid, ok := storage.GetTenant(ctx)
	if !ok {
		return storage.ErrNoTenant
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.assets[id]
	if !exists || a.TenantID != tid {
		return storage.ErrNotFound
	}

	delete(s.assets, id)
	return nil
}
