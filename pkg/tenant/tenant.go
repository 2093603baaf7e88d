// Package tenant defines the multi-tenant identity model: integer tenant
// identifiers and tenant-qualified usernames of the form "local@domain".
package tenant

import (
	"fmt"
	"strings"
)

// ID identifies a tenant in the tenant directory.
type ID int

const (
	// Invalid is returned by directory lookups when the tenant domain is
	// not registered. It is a lookup miss, not an error.
	Invalid ID = -1

	// SuperID identifies the super tenant, which owns every username
	// without an explicit tenant domain suffix.
	SuperID ID = -1234
)

// SuperDomain is the domain of the super tenant.
const SuperDomain = "carbon.super"

// QualifiedUsername is a username decomposed into a local name and the
// tenant domain it belongs to.
type QualifiedUsername struct {
	Local  string
	Domain string
}

// String returns the canonical "local@domain" form.
func (q QualifiedUsername) String() string {
	return q.Local + "@" + q.Domain
}

// ParseUsername splits a username into its local name and tenant domain.
// The last '@' delimits the domain, so local names that are themselves
// email addresses keep their '@'. A username without a domain suffix
// belongs to the super tenant. Domains are lowercased.
func ParseUsername(username string) (QualifiedUsername, error) {
	local, domain := username, SuperDomain
	if i := strings.LastIndex(username, "@"); i >= 0 {
		local = username[:i]
		domain = strings.ToLower(username[i+1:])
		if domain == "" {
			domain = SuperDomain
		}
	}
	if local == "" {
		return QualifiedUsername{}, fmt.Errorf("username %q has no local name", username)
	}
	return QualifiedUsername{Local: local, Domain: domain}, nil
}
