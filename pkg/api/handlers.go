// Package api exposes the mock collections over HTTP. Every list endpoint
// goes through the same list query engine, driven by the resource registry.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/auth"
	"github.com/adfharrison1/cpaas-admin/pkg/domain"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

// maxBodyBytes caps request bodies accepted by write handlers
const maxBodyBytes = 1 << 20

// Handler provides HTTP handlers for the admin API
type Handler struct {
	repo     domain.Repository
	registry *resource.Registry
	tokens   *auth.TokenService
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(repo domain.Repository, registry *resource.Registry, tokens *auth.TokenService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:     repo,
		registry: registry,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// resourceSpec resolves the {resource} path variable
func (h *Handler) resourceSpec(r *http.Request) (resource.Spec, error) {
	return h.registry.Lookup(mux.Vars(r)["resource"])
}

// writableSpec resolves {resource} and rejects read-only collections
func (h *Handler) writableSpec(r *http.Request) (resource.Spec, error) {
	spec, err := h.resourceSpec(r)
	if err != nil {
		return spec, err
	}
	if spec.ReadOnly {
		return spec, domain.ReadOnly(spec.Name)
	}
	return spec, nil
}

// decodeRecord reads a JSON object body
func decodeRecord(w http.ResponseWriter, r *http.Request) (domain.Record, error) {
	var body map[string]interface{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.InvalidInput("request body is empty")
		}
		return nil, domain.WrapError(domain.KindInvalidInput, err, "invalid request body")
	}
	if body == nil {
		return nil, domain.InvalidInput("request body must be a JSON object")
	}
	return domain.Record(body), nil
}

// writeJSON encodes v with the given status
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}
