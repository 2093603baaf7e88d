// Package transport provides the HTTP server and middleware chain for
// the governance API.
//
// The transport layer owns cross-cutting HTTP concerns: panic recovery,
// request ID assignment (X-Request-ID), and structured request logging
// via log/slog. Authentication and metrics middleware live in their own
// packages (pkg/auth, pkg/observability) and compose with this package's
// Chain helper.
//
// The Server type wraps net/http's server with graceful shutdown on
// SIGINT/SIGTERM, waiting for in-flight requests to complete within a
// configurable deadline.
package transport
