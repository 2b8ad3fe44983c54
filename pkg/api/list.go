package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/listquery"
)

// HandleList handles GET requests for a paginated, filtered resource list
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	spec, err := h.resourceSpec(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	query, err := listquery.ParseQuery(r.URL.Query(), spec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	records, err := h.repo.List(r.Context(), spec.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := listquery.Execute(records, spec, query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Debug("listed resource",
		zap.String("resource", spec.Name),
		zap.Int("total", page.Total),
		zap.Int("page", page.Page),
		zap.Int("returned", len(page.Items)),
	)
	h.writeJSON(w, http.StatusOK, page)
}
