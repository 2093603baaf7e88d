package config

import (
	"errors"
	"fmt"

	"github.com/sameerak/carbon-governance/pkg/tenant"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// Tenant registrations need a domain and a usable ID. ID 0 is reserved
	// as the zero value and -1 marks an unresolved tenant.
	seen := make(map[string]bool)
	for i, t := range c.Auth.Tenants {
		if t.Domain == "" {
			errs = append(errs, fmt.Errorf("auth.tenants[%d].domain is required", i))
		}
		if t.ID == 0 || tenant.ID(t.ID) == tenant.Invalid {
			errs = append(errs, fmt.Errorf("auth.tenants[%d].id %d is reserved", i, t.ID))
		}
		if seen[t.Domain] {
			errs = append(errs, fmt.Errorf("auth.tenants[%d].domain %q registered twice", i, t.Domain))
		}
		seen[t.Domain] = true
	}

	for i, u := range c.Auth.Users {
		if u.Username == "" {
			errs = append(errs, fmt.Errorf("auth.users[%d].username is required", i))
			continue
		}
		if _, err := tenant.ParseUsername(u.Username); err != nil {
			errs = append(errs, fmt.Errorf("auth.users[%d].username: %w", i, err))
		}
		if u.Password == "" && u.PasswordHash == "" && u.PasswordFile == "" {
			errs = append(errs, fmt.Errorf("auth.users[%d] needs password, password_hash, or password_file", i))
		}
	}

	return errors.Join(errs...)
}
