package auth

import "errors"

// Error kinds distinguish authentication failure modes for logging and
// metrics. They never change the HTTP response shape: every kind surfaces
// to the client as a 401 challenge.
var (
	// ErrTenantResolution wraps infrastructure failures while resolving a
	// tenant domain to a tenant ID.
	ErrTenantResolution = errors.New("tenant resolution failed")

	// ErrUnknownTenant means the tenant domain is not registered in the
	// tenant directory.
	ErrUnknownTenant = errors.New("unknown tenant domain")

	// ErrVerification wraps infrastructure failures while contacting the
	// user store.
	ErrVerification = errors.New("credential verification failed")

	// ErrInvalidCredentials means the user store rejected the
	// username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnsupportedScheme means the request carried no Basic credentials.
	ErrUnsupportedScheme = errors.New("unsupported authentication scheme")
)
