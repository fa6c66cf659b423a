package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/perguntas-ebd/backend/internal/moderators"
	"github.com/perguntas-ebd/backend/pkg/response"
)

// ContextModerator is the key for the resolved moderator profile in gin context.
const ContextModerator = "moderator"

// ModeratorAuth returns a middleware that resolves the credential header
// against the moderator directory and stores the profile in context.
// There are no tokens: the credential is revalidated on every request, so
// a removed directory entry loses access immediately.
func ModeratorAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := moderators.Authenticate(c.GetHeader(moderators.CredentialHeader))
		if profile == nil {
			response.Unauthorized(c, "unknown credential")
			c.Abort()
			return
		}
		c.Set(ContextModerator, profile)
		c.Next()
	}
}

// ModeratorFrom returns the profile set by ModeratorAuth.
func ModeratorFrom(c *gin.Context) *moderators.Profile {
	return c.MustGet(ContextModerator).(*moderators.Profile)
}
