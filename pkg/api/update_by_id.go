package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HandleUpdateById handles PUT and PATCH requests. Both merge the body into
// the stored record; the merged result must still be a valid record.
func (h *Handler) HandleUpdateById(w http.ResponseWriter, r *http.Request) {
	spec, err := h.writableSpec(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]

	patch, err := decodeRecord(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.repo.Update(r.Context(), spec.Name, id, patch, spec.ValidateRecord)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("record updated", zap.String("resource", spec.Name), zap.String("id", id))
	h.writeJSON(w, http.StatusOK, updated)
}
