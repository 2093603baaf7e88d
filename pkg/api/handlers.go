package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sameerak/carbon-governance/pkg/auth"
	"github.com/sameerak/carbon-governance/pkg/storage"
)

// maxBodySize limits asset request bodies.
const maxBodySize = 1 << 20 // 1 MB

// Handler serves the governance asset API. Every endpoint requires an
// authenticated identity in the request context; the authentication gate
// middleware establishes it before dispatch.
type Handler struct {
	store  storage.AssetStore
	logger *slog.Logger
}

// NewHandler creates a Handler backed by the given asset store.
func NewHandler(store storage.AssetStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Register mounts the asset routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /governance/assets", h.handleCreate)
	mux.HandleFunc("GET /governance/assets", h.handleList)
	mux.HandleFunc("GET /governance/assets/{id}", h.handleGet)
	mux.HandleFunc("DELETE /governance/assets/{id}", h.handleDelete)
}

// identity pulls the authenticated identity from the context. A missing
// identity is a wiring bug (the gate must run before dispatch), reported
// as a server error rather than a 401.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) *auth.Identity {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		h.logger.Error("request reached asset handler without identity", "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, NewServerError("no authenticated identity"))
	}
	return id
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id := h.identity(w, r)
	if id == nil {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		WriteError(w, http.StatusBadRequest, NewInvalidRequestError("", "reading request body"))
		return
	}

	var req CreateAssetRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteError(w, http.StatusBadRequest, NewInvalidRequestError("", "invalid JSON body"))
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		WriteError(w, http.StatusBadRequest, apiErr)
		return
	}

	now := time.Now().UTC()
	asset := &storage.Asset{
		ID:        NewAssetID(),
		TenantID:  id.TenantID,
		Name:      req.Name,
		Type:      req.Type,
		Owner:     id.Username,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.SaveAsset(r.Context(), asset); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.logger.Info("asset created",
		"asset_id", asset.ID,
		"tenant_id", int(id.TenantID),
		"owner", id.Username,
	)
	writeJSON(w, http.StatusCreated, assetResponse(asset, id.TenantDomain))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := h.identity(w, r)
	if id == nil {
		return
	}

	assetID := r.PathValue("id")
	if !ValidateAssetID(assetID) {
		WriteError(w, http.StatusNotFound, NewNotFoundError("asset not found"))
		return
	}

	asset, err := h.store.GetAsset(r.Context(), assetID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assetResponse(asset, id.TenantDomain))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	id := h.identity(w, r)
	if id == nil {
		return
	}

	assets, err := h.store.ListAssets(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	resp := ListAssetsResponse{Assets: make([]AssetResponse, 0, len(assets))}
	for _, a := range assets {
		resp.Assets = append(resp.Assets, assetResponse(a, id.TenantDomain))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := h.identity(w, r)
	if id == nil {
		return
	}

	assetID := r.PathValue("id")
	if !ValidateAssetID(assetID) {
		WriteError(w, http.StatusNotFound, NewNotFoundError("asset not found"))
		return
	}

	if err := h.store.DeleteAsset(r.Context(), assetID); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStoreError maps storage sentinel errors to API errors.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteError(w, http.StatusNotFound, NewNotFoundError("asset not found"))
	case errors.Is(err, storage.ErrConflict):
		WriteError(w, http.StatusConflict, NewConflictError("asset already exists"))
	default:
		h.logger.Error("asset store failed", "error", err)
		WriteError(w, http.StatusInternalServerError, NewServerError("storage failure"))
	}
}

func assetResponse(a *storage.Asset, tenantDomain string) AssetResponse {
	return AssetResponse{
		ID:           a.ID,
		Name:         a.Name,
		Type:         a.Type,
		TenantDomain: tenantDomain,
		Owner:        a.Owner,
		Content:      a.Content,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
