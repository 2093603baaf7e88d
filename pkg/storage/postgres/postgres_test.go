package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sameerak/carbon-governance/pkg/storage"
	"github.com/sameerak/carbon-governance/pkg/tenant"
)

func init() {
	// Configure testcontainers to use podman.
	// Detect the podman socket from `podman machine inspect`.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a migrated Store.
// Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}
	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("governance_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{DSN: dsn, MigrateOnStart: true})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(store.Close)

	return store
}

func TestMigrateSeedsSuperTenant(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	id, err := store.ResolveTenantID(ctx, tenant.SuperDomain)
	if err != nil {
		t.Fatalf("ResolveTenantID: %v", err)
	}
	if id != tenant.SuperID {
		t.Errorf("super tenant id = %d, want %d", id, tenant.SuperID)
	}
}

func TestResolveTenantID(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.AddTenant(ctx, "Acme.COM", 7); err != nil {
		t.Fatalf("AddTenant: %v", err)
	}

	id, err := store.ResolveTenantID(ctx, "ACME.com")
	if err != nil {
		t.Fatalf("ResolveTenantID: %v", err)
	}
	if id != 7 {
		t.Errorf("tenant id = %d, want 7", id)
	}

	// Unknown domains are a miss, not an error.
	id, err = store.ResolveTenantID(ctx, "unknown.com")
	if err != nil {
		t.Fatalf("ResolveTenantID(unknown): %v", err)
	}
	if id != tenant.Invalid {
		t.Errorf("unknown tenant id = %d, want %d", id, tenant.Invalid)
	}

	if err := store.AddTenant(ctx, "acme.com", 7); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate AddTenant = %v, want ErrConflict", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.AddTenant(ctx, "acme.com", 7); err != nil {
		t.Fatal(err)
	}
	if err := store.AddUser(ctx, "bob", 7, "s3cret"); err != nil {
		t.Fatal(err)
	}

	ok, err := store.VerifyPassword(ctx, "bob", "s3cret", 7)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Error("correct password rejected")
	}

	ok, err = store.VerifyPassword(ctx, "bob", "wrong", 7)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}

	// Unknown user is a mismatch, not an error.
	ok, err = store.VerifyPassword(ctx, "nobody", "s3cret", 7)
	if err != nil {
		t.Fatalf("VerifyPassword(unknown): %v", err)
	}
	if ok {
		t.Error("unknown user accepted")
	}

	// Same local name under a different tenant does not match.
	ok, err = store.VerifyPassword(ctx, "bob", "s3cret", tenant.SuperID)
	if err != nil {
		t.Fatalf("VerifyPassword(other tenant): %v", err)
	}
	if ok {
		t.Error("user accepted under the wrong tenant")
	}
}

func TestAssetLifecycle(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.AddTenant(ctx, "acme.com", 7); err != nil {
		t.Fatal(err)
	}
	if err := store.AddTenant(ctx, "other.org", 8); err != nil {
		t.Fatal(err)
	}

	acme := storage.SetTenant(ctx, 7)
	other := storage.SetTenant(ctx, 8)

	now := time.Now().UTC().Truncate(time.Microsecond)
	asset := &storage.Asset{
		ID:        "asset_abc",
		Name:      "retention-policy",
		Type:      "policy",
		Content:   json.RawMessage(`{"days":30}`),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := store.SaveAsset(acme, asset); err != nil {
		t.Fatalf("SaveAsset: %v", err)
	}
	if err := store.SaveAsset(acme, asset); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate SaveAsset = %v, want ErrConflict", err)
	}

	got, err := store.GetAsset(acme, "asset_abc")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if got.Name != "retention-policy" || got.Type != "policy" || got.TenantID != 7 {
		t.Errorf("asset = %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}

	// Cross-tenant access is a not-found, never a leak.
	if _, err := store.GetAsset(other, "asset_abc"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cross-tenant GetAsset = %v, want ErrNotFound", err)
	}
	if err := store.DeleteAsset(other, "asset_abc"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cross-tenant DeleteAsset = %v, want ErrNotFound", err)
	}

	assets, err := store.ListAssets(acme)
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("ListAssets returned %d assets, want 1", len(assets))
	}

	if err := store.DeleteAsset(acme, "asset_abc"); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if _, err := store.GetAsset(acme, "asset_abc"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetAsset after delete = %v, want ErrNotFound", err)
	}
}

func TestNoTenantInContext(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.SaveAsset(ctx, &storage.Asset{ID: "asset_x"}); !errors.Is(err, storage.ErrNoTenant) {
		t.Errorf("SaveAsset without tenant = %v, want ErrNoTenant", err)
	}
	if _, err := store.ListAssets(ctx); !errors.Is(err, storage.ErrNoTenant) {
		t.Errorf("ListAssets without tenant = %v, want ErrNoTenant", err)
	}
}
