package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func perimeterRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/moderator/ping", Perimeter(secret), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestPerimeter(t *testing.T) {
	testCases := []struct {
		name       string
		secret     string
		url        string
		wantStatus int
	}{
		{"valid key passes", "s3cret", "/moderator/ping?key=s3cret", http.StatusOK},
		{"wrong key redirects", "s3cret", "/moderator/ping?key=wrong", http.StatusFound},
		{"missing key redirects", "s3cret", "/moderator/ping", http.StatusFound},
		{"empty secret locks the route", "", "/moderator/ping?key=", http.StatusFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			perimeterRouter(tc.secret).ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusFound {
				assert.Equal(t, "/", w.Header().Get("Location"))
				assert.NotContains(t, w.Body.String(), "error")
			}
		})
	}
}
