package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/auth"
	"github.com/adfharrison1/cpaas-admin/pkg/domain"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

// appendLog writes an entry to the logs collection on behalf of the caller
func (h *Handler) appendLog(r *http.Request, entry domain.Record) (domain.Record, error) {
	entry["timestamp"] = h.now().UTC().Format(time.RFC3339)
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		entry["userId"] = claims.UserID()
	}
	return h.repo.Create(r.Context(), resource.Logs, entry)
}

// recordAudit appends a system log entry. Failures are logged, not returned.
func (h *Handler) recordAudit(r *http.Request, event, level, subject string, metadata map[string]interface{}) {
	_, err := h.appendLog(r, domain.Record{
		"level":     level,
		"channel":   "system",
		"event":     event,
		"status":    "recorded",
		"recipient": subject,
		"message":   event + " " + subject,
		"metadata":  metadata,
	})
	if err != nil {
		h.logger.Warn("failed to record audit log", zap.String("event", event), zap.Error(err))
	}
}
