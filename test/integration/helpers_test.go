// Package integration provides end-to-end tests for the governance API.
//
// Tests run against a real HTTP server assembled from the same pieces as
// the production binary (auth gate, middleware chain, asset handlers),
// backed by in-memory stores and started in-process with net/http/httptest.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sameerak/carbon-governance/pkg/api"
	"github.com/sameerak/carbon-governance/pkg/auth"
	"github.com/sameerak/carbon-governance/pkg/observability"
	"github.com/sameerak/carbon-governance/pkg/storage/memory"
	"github.com/sameerak/carbon-governance/pkg/transport"
)

// startServer assembles the full middleware chain and handler stack the
// way cmd/server does, backed by in-memory stores seeded with one extra
// tenant (acme.com, ID 7) and two users.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir := memory.NewDirectory()
	dir.Register("acme.com", 7)

	users := memory.NewUserStore([]memory.UserEntry{
		{Local: "admin", TenantID: -1234, Password: "adminpw"},
		{Local: "bob", TenantID: 7, Password: "bobpw"},
	})

	gate := auth.NewGate(dir, users, logger)

	mux := http.NewServeMux()
	api.NewHandler(memory.NewAssetStore(), logger).Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := transport.Chain(
		transport.Recovery(logger),
		transport.RequestID(),
		transport.Logging(logger),
		observability.MetricsMiddleware,
		auth.Middleware(gate, auth.DefaultBypassEndpoints),
	)(mux)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request with optional basic auth and a JSON body.
func doJSON(t *testing.T, srv *httptest.Server, method, path, username, password, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if username != "" {
		req.SetBasicAuth(username, password)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// decodeJSON decodes the response body into v and closes it.
func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
