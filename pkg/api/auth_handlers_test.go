package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/cpaas-admin/pkg/auth"
	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

func newTestRouter(t *testing.T) (*mux.Router, *Handler, *MockRepository) {
	t.Helper()
	handler, repo := newTestHandler(t)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router, handler, repo
}

func bearer(t *testing.T, h *Handler, userID, role string) string {
	t.Helper()
	token, _, err := h.tokens.Issue(userID, userID+"@cpaas.example", role, "")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthenticate_ShortCircuits(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"bare bearer word", "Bearer"},
		{"any string containing Bearer", "xxBearerxx"},
		{"unsigned token", "Bearer abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, repo := newTestRouter(t)
			repo.Seed("users", makeUsers(4)...)

			req := httptest.NewRequest("GET", "/api/users?role=admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Unauthorized", decodeError(t, w).Message)
			assert.Equal(t, 0, repo.GetListCalls(), "collection must not be read")
		})
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	router, handler, repo := newTestRouter(t)
	repo.Seed("users", makeUsers(4)...)

	req := httptest.NewRequest("GET", "/api/users?role=admin", nil)
	req.Header.Set("Authorization", bearer(t, handler, "usr_001", "viewer"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var page pageBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, repo.GetListCalls())
}

func TestHandler_HandleLogin(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"active user", `{"email":"USER1@cpaas.example"}`, http.StatusOK},
		{"suspended user", `{"email":"user2@cpaas.example"}`, http.StatusUnauthorized},
		{"unknown user", `{"email":"nobody@cpaas.example"}`, http.StatusUnauthorized},
		{"missing email", `{}`, http.StatusBadRequest},
		{"malformed body", `{"email":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, handler, repo := newTestRouter(t)
			users := makeUsers(2)
			users[1]["status"] = "suspended"
			repo.Seed("users", users...)

			req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp TokenResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "usr_001", resp.User.ID())

			claims, err := handler.tokens.Verify(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, "usr_001", claims.UserID())
			assert.Equal(t, "admin", claims.Role)
			assert.False(t, claims.Impersonated())
		})
	}
}

func TestHandler_HandleMe(t *testing.T) {
	router, handler, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", bearer(t, handler, "usr_003", "developer"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "usr_003", resp.UserID)
	assert.Equal(t, "developer", resp.Role)
	assert.Empty(t, resp.ImpersonatedBy)
	assert.False(t, resp.ExpiresAt.IsZero())
}

func TestHandler_HandleImpersonate(t *testing.T) {
	tests := []struct {
		name           string
		callerRole     string
		target         string
		expectedStatus int
	}{
		{"admin impersonates active user", auth.RoleAdmin, "usr_003", http.StatusOK},
		{"non-admin is forbidden", "developer", "usr_003", http.StatusForbidden},
		{"missing target", auth.RoleAdmin, "usr_404", http.StatusNotFound},
		{"inactive target", auth.RoleAdmin, "usr_004", http.StatusConflict},
		{"self", auth.RoleAdmin, "usr_001", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, handler, repo := newTestRouter(t)
			users := makeUsers(4)
			users[3]["status"] = "invited"
			repo.Seed("users", users...)

			req := httptest.NewRequest("POST", "/api/users/"+tt.target+"/impersonate", nil)
			req.Header.Set("Authorization", bearer(t, handler, "usr_001", tt.callerRole))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, 0, repo.GetCollectionCount("logs"))
				return
			}

			var resp TokenResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			claims, err := handler.tokens.Verify(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.target, claims.UserID())
			assert.Equal(t, "usr_001", claims.Actor)
			assert.Equal(t, "viewer", claims.Role)

			// The impersonation is audited in the logs collection
			logs, err := repo.List(req.Context(), "logs")
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, "user.impersonated", logs[0]["event"])
			assert.Equal(t, "usr_001", logs[0]["userId"])
		})
	}
}

func TestHandler_HandleImpersonate_NoChaining(t *testing.T) {
	router, handler, repo := newTestRouter(t)
	repo.Seed("users", makeUsers(4)...)

	token, _, err := handler.tokens.Issue("usr_005", "", auth.RoleAdmin, "usr_001")
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/users/usr_003/impersonate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckImpersonation(t *testing.T) {
	admin := &auth.Claims{Role: auth.RoleAdmin}
	admin.Subject = "usr_001"

	assert.NoError(t, checkImpersonation(admin, "usr_002"))
	assert.ErrorIs(t, checkImpersonation(admin, "usr_001"), domain.ErrInvalidInput)

	chained := &auth.Claims{Role: auth.RoleAdmin, Actor: "usr_009"}
	chained.Subject = "usr_001"
	err := checkImpersonation(chained, "usr_002")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, StatusFor(domain.KindOf(err)))
}

func TestRequireRole_ForbiddenBody(t *testing.T) {
	handler, _ := newTestHandler(t)
	called := false
	h := handler.RequireRole(auth.RoleAdmin, func(w http.ResponseWriter, r *http.Request) { called = true })

	req := withClaims(httptest.NewRequest("POST", "/api/users/usr_002/impersonate", nil), "usr_003", "viewer")
	w := httptest.NewRecorder()
	h(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "requires role admin", decodeError(t, w).Message)
}

func TestHandler_HandleTestWebhook(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{"active webhook", "whk_01", http.StatusCreated},
		{"disabled webhook", "whk_02", http.StatusConflict},
		{"missing webhook", "whk_99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, handler, repo := newTestRouter(t)
			repo.Seed("webhooks",
				domain.Record{"id": "whk_01", "url": "https://hooks.example.com/a", "status": "active"},
				domain.Record{"id": "whk_02", "url": "https://hooks.example.com/b", "status": "disabled"},
			)

			req := httptest.NewRequest("POST", "/api/webhooks/"+tt.id+"/test", nil)
			req.Header.Set("Authorization", bearer(t, handler, "usr_001", "developer"))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusCreated {
				assert.Equal(t, 0, repo.GetCollectionCount("logs"))
				return
			}

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
			assert.Equal(t, WebhookTestEvent, entry["event"])
			assert.Equal(t, "https://hooks.example.com/a", entry["recipient"])
			assert.Equal(t, "2024-06-01T12:00:00Z", entry["timestamp"])
			assert.Equal(t, "usr_001", entry["userId"])
			assert.Equal(t, 1, repo.GetCollectionCount("logs"))
		})
	}
}

func TestHandler_HandleMetricsSummary(t *testing.T) {
	router, handler, repo := newTestRouter(t)
	repo.Seed("users", makeUsers(4)...)
	repo.Seed("logs",
		domain.Record{"id": "l1", "timestamp": "2024-05-01T10:00:00Z", "level": "info", "channel": "sms", "status": "delivered"},
		domain.Record{"id": "l2", "timestamp": "2024-05-02T10:00:00Z", "level": "error", "channel": "sms", "status": "failed"},
		domain.Record{"id": "l3", "timestamp": "2024-05-03T10:00:00Z", "level": "info", "channel": "whatsapp", "status": "delivered"},
		domain.Record{"id": "l4", "timestamp": "2024-04-01T10:00:00Z", "level": "info", "channel": "voice", "status": "delivered"},
	)
	repo.Seed("transactions",
		domain.Record{"id": "t1", "timestamp": "2024-05-01T00:00:00Z", "currency": "USD", "amount": 10.25, "status": "completed"},
		domain.Record{"id": "t2", "timestamp": "2024-05-02T00:00:00Z", "currency": "USD", "amount": 4.5, "status": "completed"},
		domain.Record{"id": "t3", "timestamp": "2024-05-02T00:00:00Z", "currency": "EUR", "amount": 99.0, "status": "failed"},
	)

	req := httptest.NewRequest("GET", "/api/metrics/summary?startDate=2024-05-01&endDate=2024-05-31", nil)
	req.Header.Set("Authorization", bearer(t, handler, "usr_001", "viewer"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var summary MetricsSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	assert.Equal(t, 3, summary.Counts["logs"])
	assert.Equal(t, 3, summary.Counts["transactions"])
	// users were created in January
	assert.Equal(t, 0, summary.Counts["users"])
	assert.Equal(t, map[string]int{"info": 2, "error": 1}, summary.Logs.ByLevel)
	assert.Equal(t, map[string]int{"sms": 2, "whatsapp": 1}, summary.Logs.ByChannel)
	assert.Equal(t, 0.67, summary.Logs.DeliveryRate)
	assert.Equal(t, map[string]float64{"USD": 14.75}, summary.Transactions.Volume)
	assert.Equal(t, map[string]int{"completed": 2, "failed": 1}, summary.Transactions.ByStatus)

	req = httptest.NewRequest("GET", "/api/metrics/summary?endDate=tomorrow", nil)
	req.Header.Set("Authorization", bearer(t, handler, "usr_001", "viewer"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
