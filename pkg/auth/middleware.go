package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sameerak/carbon-governance/pkg/observability"
	"github.com/sameerak/carbon-governance/pkg/storage"
)

// challengeBody is the JSON error envelope written alongside the 401
// challenge. It is deliberately generic: failure kinds are distinguished
// only in logs and metrics, never in the response.
const challengeBody = `{"error":{"type":"invalid_request","message":"authentication required"}}`

// Middleware creates HTTP middleware from a Gate. It checks the bypass
// list, decodes the Authorization header, runs the gate, and either writes
// the 401 challenge or injects the authenticated identity and tenant into
// the request context before calling the next handler.
func Middleware(gate *Gate, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			cred := DecodeCredential(r)
			decision := gate.Handle(r.Context(), cred)
			observability.AuthAttemptsTotal.WithLabelValues(
				schemeLabel(cred.Scheme), string(decision.Outcome),
			).Inc()

			if !decision.Allowed {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"scheme", schemeLabel(cred.Scheme),
					"error", decision.Err,
				)
				w.Header().Set("WWW-Authenticate", string(decision.Challenge))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(decision.Status)
				w.Write([]byte(challengeBody))
				return
			}

			slog.Debug("authentication succeeded",
				"username", decision.Identity.Username,
				"tenant_id", int(decision.Identity.TenantID),
				"path", r.URL.Path,
			)

			ctx := SetIdentity(r.Context(), decision.Identity)
			ctx = storage.SetTenant(ctx, decision.Identity.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}

// schemeLabel maps a Scheme to its metrics label value.
func schemeLabel(s Scheme) string {
	if s == SchemeNone {
		return "none"
	}
	return strings.ToLower(string(s))
}
