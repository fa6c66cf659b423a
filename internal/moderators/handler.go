package moderators

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perguntas-ebd/backend/pkg/response"
)

// CredentialHeader carries the moderator credential on authenticated requests.
const CredentialHeader = "X-Moderator-Credential"

// LoginRequest is the body for POST /moderator/login.
type LoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// Handler serves moderator login and session revalidation.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a moderators handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// Login handles POST /moderator/login. The credential is the whole secret;
// on success the client persists it together with the derived profile.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	profile := Authenticate(req.Credential)
	if profile == nil {
		response.Unauthorized(c, "unknown credential")
		return
	}
	h.logger.Info("moderator login", zap.String("name", profile.DisplayName))
	response.OK(c, gin.H{
		"credential": Normalize(req.Credential),
		"profile":    profile,
	})
}

// Session handles GET /moderator/session. It revalidates a persisted
// credential; a 401 tells the client to discard its stale session blob.
func (h *Handler) Session(c *gin.Context) {
	profile := Authenticate(c.GetHeader(CredentialHeader))
	if profile == nil {
		response.Unauthorized(c, "session no longer valid")
		return
	}
	response.OK(c, gin.H{"profile": profile})
}
