package api

import (
	"encoding/json"
	"time"
)

// CreateAssetRequest is the body of POST /governance/assets.
type CreateAssetRequest struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Validate checks required fields, returning an APIError describing the
// first problem found.
func (r *CreateAssetRequest) Validate() *APIError {
	if r.Name == "" {
		return NewInvalidRequestError("name", "name is required")
	}
	if r.Type == "" {
		return NewInvalidRequestError("type", "type is required")
	}
	if len(r.Content) > 0 && !json.Valid(r.Content) {
		return NewInvalidRequestError("content", "content must be valid JSON")
	}
	return nil
}

// AssetResponse is the JSON shape of one governance asset. Owner is the
// tenant-qualified username that created the asset's request context.
type AssetResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	TenantDomain string          `json:"tenant_domain"`
	Owner        string          `json:"owner,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ListAssetsResponse wraps the asset collection.
type ListAssetsResponse struct {
	Assets []AssetResponse `json:"assets"`
}
