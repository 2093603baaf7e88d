// Package postgres backs the tenant directory, the credential verifier,
// and the asset store with PostgreSQL via pgx/v5. User passwords are
// stored as bcrypt hashes.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/sameerak/carbon-governance/pkg/auth"
	"github.com/sameerak/carbon-governance/pkg/storage"
	"github.com/sameerak/carbon-governance/pkg/tenant"
)

// Store is a PostgreSQL-backed tenant directory, user store, and asset store.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time interface checks.
var (
	_ auth.TenantDirectory    = (*Store)(nil)
	_ auth.CredentialVerifier = (*Store)(nil)
	_ storage.AssetStore      = (*Store)(nil)
)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity, used by the readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ResolveTenantID resolves a tenant domain to its ID. Unknown domains
// resolve to tenant.Invalid with a nil error; query failures are errors.
func (s *Store) ResolveTenantID(ctx context.Context, domain string) (tenant.ID, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		"SELECT id FROM tenants WHERE domain = $1",
		strings.ToLower(domain),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return tenant.Invalid, nil
	}
	if err != nil {
		return tenant.Invalid, fmt.Errorf("querying tenant %q: %w", domain, err)
	}
	return tenant.ID(id), nil
}

// VerifyPassword checks a password against the stored bcrypt hash for the
// user. An unknown user is a mismatch, not an error.
func (s *Store) VerifyPassword(ctx context.Context, localName, password string, id tenant.ID) (bool, error) {
	var hash string
	err := s.pool.QueryRow(ctx,
		"SELECT password_hash FROM users WHERE tenant_id = $1 AND local_name = $2",
		int(id), localName,
	).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying user %q: %w", localName, err)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// AddTenant registers a tenant domain, used by provisioning tooling and tests.
func (s *Store) AddTenant(ctx context.Context, domain string, id tenant.ID) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO tenants (id, domain) VALUES ($1, $2)",
		int(id), strings.ToLower(domain),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting tenant %q: %w", domain, err)
	}
	return nil
}

// AddUser stores a user with a bcrypt hash of the given password, used by
// provisioning tooling and tests.
func (s *Store) AddUser(ctx context.Context, localName string, id tenant.ID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO users (tenant_id, local_name, password_hash) VALUES ($1, $2, $3)",
		int(id), localName, string(hash),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user %q: %w", localName, err)
	}
	return nil
}

// SaveAsset persists an asset for the tenant in the context.
func (s *Store) SaveAsset(ctx context.Context, a *storage.Asset) error {
	tid, ok := storage.GetTenant(ctx)
	if !ok {
		return storage.ErrNoTenant
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO assets (id, tenant_id, name, type, owner, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		a.ID, int(tid), a.Name, a.Type, a.Owner, nullJSON(a.Content), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting asset: %w", err)
	}
	return nil
}

// GetAsset retrieves an asset by ID, scoped to the tenant in the context.
func (s *Store) GetAsset(ctx context.Context, id string) (*storage.Asset, error) {
	tid, ok := storage.GetTenant(ctx)
	if !ok {
		return nil, storage.ErrNoTenant
	}

	a := &storage.Asset{ID: id, TenantID: tid}
	var tenantID int
	err := s.pool.QueryRow(ctx, `
		SELECT tenant_id, name, type, owner, content, created_at, updated_at
		FROM assets WHERE id = $1 AND tenant_id = $2
	`, id, int(tid)).Scan(&tenantID, &a.Name, &a.Type, &a.Owner, &a.Content, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying asset %q: %w", id, err)
	}
	return a, nil
}

// ListAssets returns the tenant's assets, newest first.
func (s *Store) ListAssets(ctx context.Context) ([]*storage.Asset, error) {
	tid, ok := storage.GetTenant(ctx)
	if !ok {
		return nil, storage.ErrNoTenant
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, type, owner, content, created_at, updated_at
		FROM assets WHERE tenant_id = $1
		ORDER BY created_at DESC, id
	`, int(tid))
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var out []*storage.Asset
	for rows.Next() {
		a := &storage.Asset{TenantID: tid}
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Owner, &a.Content, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assets: %w", err)
	}
	return out, nil
}

// DeleteAsset removes an asset owned by the tenant in the context.
func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	tid, ok := storage.GetTenant(ctx)
	if !ok {
		return storage.ErrNoTenant
	}

	tag, err := s.pool.Exec(ctx,
		"DELETE FROM assets WHERE id = $1 AND tenant_id = $2",
		id, int(tid),
	)
	if err != nil {
		return fmt.Errorf("deleting asset %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// nullJSON converts empty JSON payloads to nil so they are stored as SQL NULL.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
