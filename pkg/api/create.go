package api

import (
	"net/http"

	"go.uber.org/zap"
)

// HandleCreate handles POST requests to add a record to a writable resource
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	spec, err := h.writableSpec(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := decodeRecord(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := spec.ValidateRecord(rec); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.repo.Create(r.Context(), spec.Name, rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("record created", zap.String("resource", spec.Name), zap.String("id", created.ID()))
	w.Header().Set("Location", r.URL.Path+"/"+created.ID())
	h.writeJSON(w, http.StatusCreated, created)
}
