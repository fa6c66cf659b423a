package moderators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(zap.NewNop())
	r := gin.New()
	r.POST("/moderator/login", h.Login)
	r.GET("/moderator/session", h.Session)
	return r
}

func TestLogin(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/moderator/login",
		strings.NewReader(`{"credential": "JonatasFaria "}`))
	req.Header.Set("Content-Type", "application/json")
	router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"credential":"jonatasfaria"`, "normalized credential is what the client persists")
	assert.Contains(t, body, `"display_name":"Jonatas Faria"`)
	assert.Contains(t, body, `"assigned_room":"verdade-absoluta"`)
	assert.Contains(t, body, `"is_admin":true`)
}

func TestLoginUnknownCredential(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/moderator/login",
		strings.NewReader(`{"credential": "nonexistent"}`))
	req.Header.Set("Content-Type", "application/json")
	router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unknown credential")
}

func TestLoginMissingBody(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/moderator/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionRevalidation(t *testing.T) {
	testCases := []struct {
		name       string
		credential string
		wantStatus int
	}{
		{"valid credential", "elievaristo", http.StatusOK},
		{"stale credential", "removedteacher", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/moderator/session", nil)
			if tc.credential != "" {
				req.Header.Set(CredentialHeader, tc.credential)
			}
			router().ServeHTTP(w, req)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}
