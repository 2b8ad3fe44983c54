package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/auth"
	"github.com/adfharrison1/cpaas-admin/pkg/domain"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email string `json:"email"`
}

// TokenResponse carries a freshly issued token
type TokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      domain.Record `json:"user"`
}

// MeResponse describes the caller
type MeResponse struct {
	UserID         string    `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	ImpersonatedBy string    `json:"impersonated_by,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// HandleLogin issues a token for an active user identified by email. This is
// a mock login: there is no password.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, r, domain.WrapError(domain.KindInvalidInput, err, "invalid request body"))
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		h.writeError(w, r, domain.InvalidInput("email is required"))
		return
	}

	user, err := h.findUserByEmail(r, email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if user == nil || user["status"] != "active" {
		h.logger.Info("login refused", zap.String("email", email))
		WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.issueToken(w, r, user, "")
}

// HandleMe returns the identity carried by the caller's token
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	resp := MeResponse{
		UserID:         claims.UserID(),
		Email:          claims.Email,
		Role:           claims.Role,
		ImpersonatedBy: claims.Actor,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleImpersonate lets an admin act as another user. The issued token's
// subject is the target and its act claim names the admin.
func (h *Handler) HandleImpersonate(w http.ResponseWriter, r *http.Request) {
	admin, _ := auth.ClaimsFromContext(r.Context())
	targetID := mux.Vars(r)["id"]

	if err := checkImpersonation(admin, targetID); err != nil {
		h.writeError(w, r, err)
		return
	}

	target, err := h.repo.Get(r.Context(), resource.Users, targetID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if target["status"] != "active" {
		h.writeError(w, r, domain.NewError(domain.KindConflict, "user %s is not active", targetID))
		return
	}

	h.recordAudit(r, "user.impersonated", "warn", targetID, map[string]interface{}{
		"admin_id":  admin.UserID(),
		"target_id": targetID,
	})
	h.issueToken(w, r, target, admin.UserID())
}

// checkImpersonation rejects chained impersonation and self-impersonation
func checkImpersonation(admin *auth.Claims, targetID string) error {
	if admin.Impersonated() {
		return domain.NewError(domain.KindForbidden, "cannot impersonate from an impersonated session")
	}
	if targetID == admin.UserID() {
		return domain.InvalidInput("cannot impersonate yourself")
	}
	return nil
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request, user domain.Record, actor string) {
	email, _ := user["email"].(string)
	role, _ := user["role"].(string)

	token, claims, err := h.tokens.Issue(user.ID(), email, role, actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("token issued",
		zap.String("user_id", user.ID()),
		zap.String("role", role),
		zap.String("actor", actor),
	)
	h.writeJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		User:      user,
	})
}

func (h *Handler) findUserByEmail(r *http.Request, email string) (domain.Record, error) {
	users, err := h.repo.List(r.Context(), resource.Users)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if e, ok := u["email"].(string); ok && strings.EqualFold(e, email) {
			return u, nil
		}
	}
	return nil, nil
}
