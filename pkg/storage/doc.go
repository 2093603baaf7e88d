// Package storage provides types and helpers shared across storage adapter
// implementations: sentinel errors, tenant context scoping, and the
// governance asset model.
//
// Storage adapters (memory, postgres) implement the AssetStore interface
// here plus the auth.TenantDirectory and auth.CredentialVerifier interfaces
// defined in pkg/auth.
package storage
