package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/cpaas-admin/pkg/auth"
)

// RegisterRoutes registers all API routes with the given router. Everything
// under /api except login requires a valid bearer token.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", h.HandleLogin).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(h.Authenticate)

	// Fixed paths go first so they are not captured by /{resource}/{id}
	protected.HandleFunc("/auth/me", h.HandleMe).Methods(http.MethodGet)
	protected.HandleFunc("/metrics/summary", h.HandleMetricsSummary).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}/impersonate", h.RequireRole(auth.RoleAdmin, h.HandleImpersonate)).Methods(http.MethodPost)
	protected.HandleFunc("/webhooks/{id}/test", h.HandleTestWebhook).Methods(http.MethodPost)

	// Generic resource operations
	protected.HandleFunc("/{resource}", h.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/{resource}", h.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/{resource}/{id}", h.HandleGetById).Methods(http.MethodGet)
	protected.HandleFunc("/{resource}/{id}", h.HandleUpdateById).Methods(http.MethodPut, http.MethodPatch)
	protected.HandleFunc("/{resource}/{id}", h.HandleDeleteById).Methods(http.MethodDelete)
}
