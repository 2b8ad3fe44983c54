package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetById handles GET requests to retrieve a specific record by ID
func (h *Handler) HandleGetById(w http.ResponseWriter, r *http.Request) {
	spec, err := h.resourceSpec(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.repo.Get(r.Context(), spec.Name, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}
