package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HandleDeleteById handles DELETE requests to remove a specific record by ID
func (h *Handler) HandleDeleteById(w http.ResponseWriter, r *http.Request) {
	spec, err := h.writableSpec(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.repo.Delete(r.Context(), spec.Name, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("record deleted", zap.String("resource", spec.Name), zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}
