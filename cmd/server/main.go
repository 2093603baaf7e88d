// Command server runs the governance REST API.
//
// Configuration is layered: built-in defaults, a YAML config file
// (-config flag, GOVERNANCE_CONFIG env, ./config.yaml, or
// /etc/governance/config.yaml), then GOVERNANCE_* environment
// variable overrides.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sameerak/carbon-governance/pkg/api"
	"github.com/sameerak/carbon-governance/pkg/auth"
	"github.com/sameerak/carbon-governance/pkg/config"
	"github.com/sameerak/carbon-governance/pkg/observability"
	"github.com/sameerak/carbon-governance/pkg/storage"
	"github.com/sameerak/carbon-governance/pkg/storage/memory"
	"github.com/sameerak/carbon-governance/pkg/storage/postgres"
	"github.com/sameerak/carbon-governance/pkg/tenant"
	"github.com/sameerak/carbon-governance/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Build the tenant directory, credential verifier, and asset store.
	var (
		directory auth.TenantDirectory
		verifier  auth.CredentialVerifier
		assets    storage.AssetStore
		ready     func(context.Context) error
	)

	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pg.Close()
		directory, verifier, assets = pg, pg, pg
		ready = pg.Ping
		logger.Info("storage enabled", "type", "postgres")

	default:
		dir, users, err := seedMemoryStores(cfg.Auth)
		if err != nil {
			return err
		}
		directory, verifier, assets = dir, users, memory.NewAssetStore()
		ready = func(context.Context) error { return nil }
		logger.Info("storage enabled", "type", "memory",
			"tenants", len(cfg.Auth.Tenants),
			"users", len(cfg.Auth.Users),
		)
	}

	gate := auth.NewGate(directory, verifier, logger)

	mux := http.NewServeMux()
	api.NewHandler(assets, logger).Register(mux)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	handler := transport.Chain(
		transport.Recovery(logger),
		transport.RequestID(),
		transport.Logging(logger),
		observability.MetricsMiddleware,
		auth.Middleware(gate, cfg.Auth.BypassEndpoints),
	)(mux)

	srv := transport.NewServer(handler,
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithReadTimeout(cfg.Server.ReadTimeout),
		transport.WithWriteTimeout(cfg.Server.WriteTimeout),
		transport.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transport.WithLogger(logger),
	)

	return srv.ListenAndServe()
}

// seedMemoryStores builds the in-memory tenant directory and user store
// from the auth configuration. Every user's tenant domain must either be
// the super tenant or appear in the tenant list.
func seedMemoryStores(cfg config.AuthConfig) (*memory.Directory, *memory.UserStore, error) {
	dir := memory.NewDirectory()
	for _, t := range cfg.Tenants {
		dir.Register(t.Domain, tenant.ID(t.ID))
	}

	entries := make([]memory.UserEntry, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		qualified, err := tenant.ParseUsername(u.Username)
		if err != nil {
			return nil, nil, fmt.Errorf("auth.users %q: %w", u.Username, err)
		}
		id, _ := dir.ResolveTenantID(context.Background(), qualified.Domain)
		if id == tenant.Invalid {
			return nil, nil, fmt.Errorf("auth.users %q: tenant %q is not registered", u.Username, qualified.Domain)
		}
		entries = append(entries, memory.UserEntry{
			Local:        qualified.Local,
			TenantID:     id,
			Password:     u.Password,
			PasswordHash: u.PasswordHash,
		})
	}

	return dir, memory.NewUserStore(entries), nil
}
