package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

// WebhookTestEvent is the log event recorded by a simulated delivery
const WebhookTestEvent = "webhook.test"

// HandleTestWebhook simulates delivering a test event to a webhook. Nothing
// is sent over the network; the delivery is recorded in the logs collection
// and returned.
func (h *Handler) HandleTestWebhook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	hook, err := h.repo.Get(r.Context(), resource.Webhooks, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if hook["status"] == "disabled" {
		h.writeError(w, r, domain.NewError(domain.KindConflict, "webhook %s is disabled", id))
		return
	}

	url, _ := hook["url"].(string)
	entry, err := h.appendLog(r, domain.Record{
		"level":     "info",
		"channel":   "webhook",
		"event":     WebhookTestEvent,
		"status":    "delivered",
		"recipient": url,
		"message":   "Test event delivered to " + url,
		"metadata": map[string]interface{}{
			"webhook_id":  id,
			"http_status": float64(http.StatusOK),
			"simulated":   true,
		},
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("webhook test recorded", zap.String("webhook_id", id), zap.String("log_id", entry.ID()))
	h.writeJSON(w, http.StatusCreated, entry)
}
