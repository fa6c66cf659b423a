package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PerimeterKeyParam is the query parameter carrying the shared perimeter secret.
const PerimeterKeyParam = "key"

// Perimeter returns a middleware that gates the moderator routes behind a
// single shared secret. A missing or wrong key redirects silently to the
// student root: no error body, so the protected route is not advertised.
func Perimeter(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query(PerimeterKeyParam)
		if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
