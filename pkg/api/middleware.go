package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/auth"
	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

// Authenticate verifies the bearer token before any handler runs. Requests
// without a valid token stop here with 401 and never reach a collection.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.tokens.Verify(r.Header.Get("Authorization"))
		if err != nil {
			h.logger.Debug("rejected token", zap.String("path", r.URL.Path), zap.Error(err))
			w.Header().Set("WWW-Authenticate", `Bearer realm="cpaas-admin"`)
			WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// RequireRole allows the request through only for callers with role
func (h *Handler) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			h.writeError(w, r, domain.NewError(domain.KindUnauthorized, "Unauthorized"))
			return
		}
		if claims.Role != role {
			h.writeError(w, r, domain.NewError(domain.KindForbidden, "requires role %s", role))
			return
		}
		next(w, r)
	}
}
