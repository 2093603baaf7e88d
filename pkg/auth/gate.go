package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sameerak/carbon-governance/pkg/observability"
	"github.com/sameerak/carbon-governance/pkg/tenant"
)

// TenantDirectory resolves tenant domains to tenant IDs. A domain that is
// not registered resolves to tenant.Invalid with a nil error; a non-nil
// error means the directory itself could not be consulted.
type TenantDirectory interface {
	ResolveTenantID(ctx context.Context, domain string) (tenant.ID, error)
}

// CredentialVerifier checks a password for a local username within one
// tenant's user store. The boolean reports whether the credentials are
// valid; a non-nil error means the store could not be consulted.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, localName, password string, id tenant.ID) (bool, error)
}

// Outcome classifies the result of an authentication attempt. It drives
// logging and metrics only; the response shape depends solely on
// Decision.Allowed.
type Outcome string

const (
	OutcomeAuthenticated Outcome = "authenticated"
	OutcomeDenied        Outcome = "denied"
	OutcomeError         Outcome = "error"
)

// Decision is the gate's verdict on one request. When Allowed, the request
// proceeds with Identity populated; otherwise the response is Status with a
// WWW-Authenticate header naming Challenge.
type Decision struct {
	Allowed   bool
	Identity  *Identity
	Status    int
	Challenge Scheme
	Outcome   Outcome
	Err       error // diagnostic cause for denied/error outcomes
}

// Gate authenticates requests against a tenant-scoped user store.
type Gate struct {
	directory TenantDirectory
	verifier  CredentialVerifier
	logger    *slog.Logger
}

// NewGate creates a gate backed by the given tenant directory and
// credential verifier. A nil logger falls back to slog.Default.
func NewGate(directory TenantDirectory, verifier CredentialVerifier, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{directory: directory, verifier: verifier, logger: logger}
}

// Handle decides whether the request carrying cred may proceed. Basic
// credentials are verified against the tenant's user store; every other
// credential, including a well-formed Bearer token, is rejected with a
// Bearer challenge and the token is never inspected. Handle never panics
// and never produces a 5xx status: all internal failures collapse to the
// 401 challenge.
func (g *Gate) Handle(ctx context.Context, cred Credential) Decision {
	if cred.Scheme == SchemeBasic && cred.Username != "" {
		return g.handleBasic(ctx, cred)
	}

	// Token validation belongs to a separate component that is not wired
	// in, so the Bearer path rejects unconditionally.
	return Decision{
		Status:    http.StatusUnauthorized,
		Challenge: SchemeBearer,
		Outcome:   OutcomeDenied,
		Err:       ErrUnsupportedScheme,
	}
}

func (g *Gate) handleBasic(ctx context.Context, cred Credential) Decision {
	qualified, err := tenant.ParseUsername(cred.Username)
	if err != nil {
		g.logger.Debug("basic authentication with unparsable username", "error", err)
		return denied(OutcomeDenied, fmt.Errorf("%w: %w", ErrInvalidCredentials, err))
	}

	id, err := g.directory.ResolveTenantID(ctx, qualified.Domain)
	if err != nil {
		g.logger.Error("resolving tenant for user failed",
			"username", qualified.String(),
			"error", err,
		)
		observability.TenantLookupsTotal.WithLabelValues("error").Inc()
		return denied(OutcomeError, fmt.Errorf("%w: %w", ErrTenantResolution, err))
	}
	if id == tenant.Invalid {
		g.logger.Debug("basic authentication with an invalid tenant",
			"username", qualified.String(),
		)
		observability.TenantLookupsTotal.WithLabelValues("unknown").Inc()
		return denied(OutcomeDenied, ErrUnknownTenant)
	}
	observability.TenantLookupsTotal.WithLabelValues("found").Inc()

	ok, err := g.verifier.VerifyPassword(ctx, qualified.Local, cred.Password, id)
	if err != nil {
		g.logger.Error("user store failed while authenticating user",
			"username", qualified.String(),
			"error", err,
		)
		return denied(OutcomeError, fmt.Errorf("%w: %w", ErrVerification, err))
	}

	g.logger.Debug("basic authentication completed",
		"username", qualified.String(),
		"authenticated", ok,
	)

	if !ok {
		return denied(OutcomeDenied, ErrInvalidCredentials)
	}

	return Decision{
		Allowed: true,
		Outcome: OutcomeAuthenticated,
		Identity: &Identity{
			Username:     cred.Username,
			TenantID:     id,
			TenantDomain: qualified.Domain,
		},
	}
}

// denied builds the failure decision shared by every Basic-path failure
// mode: a 401 with a Basic challenge.
func denied(outcome Outcome, err error) Decision {
	return Decision{
		Status:    http.StatusUnauthorized,
		Challenge: SchemeBasic,
		Outcome:   outcome,
		Err:       err,
	}
}
