package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/handler"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/middleware/ratelimit"
)

// roleTokens treats the bearer token as the caller's role.
type roleTokens struct{}

func (roleTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	role := models.UserRole(token)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "user-" + token, Role: role}, nil
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(Handlers{System: handler.NewSystemHandler(nil, nil)}, Options{
		Tokens:       roleTokens{},
		LoginLimiter: ratelimit.New(ratelimit.Config{PerMinute: 1, Burst: 1}),
	})
}

func call(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestHealthIsPublic(t *testing.T) {
	r := buildTestRouter()
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/ready", ""))
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	r := buildTestRouter()
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/auth/me", ""))
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/competency/overview?major=CS&year=1&sem=1", "nobody"))
}

func TestRoleGates(t *testing.T) {
	r := buildTestRouter()
	cases := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"students cannot see overviews", http.MethodGet, "/api/competency/overview", "STUDENT"},
		{"students cannot export", http.MethodGet, "/api/competency/export", "STUDENT"},
		{"students cannot queue cohorts", http.MethodPost, "/api/competency/recalculate", "STUDENT"},
		{"students only see their own composite", http.MethodGet, "/api/competency/someone-else", "STUDENT"},
		{"teachers cannot set requirements", http.MethodPut, "/api/academic/requirements", "TEACHER"},
		{"teachers cannot edit grades", http.MethodPost, "/api/academic/grades", "TEACHER"},
		{"teachers cannot manage accounts", http.MethodGet, "/api/accounts", "TEACHER"},
		{"students cannot announce", http.MethodPost, "/api/announcements", "STUDENT"},
		{"teachers cannot rate peers", http.MethodPost, "/api/peer-evaluations", "TEACHER"},
		{"only admins read metrics summary", http.MethodGet, "/api/system/metrics", "TEACHER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, http.StatusForbidden, call(r, tc.method, tc.path, tc.token))
		})
	}
}
