package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/constants"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/middleware"
	"go.uber.org/zap"
)

// SessionHandler exchanges a bearer token for a browser session
type SessionHandler struct {
	logger *zap.Logger
}

func NewSessionHandler(logger *zap.Logger) *SessionHandler {
	return &SessionHandler{logger: logging.OrNop(logger)}
}

// CreateSession stores the authenticated user in the session
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, userID)
	if err := session.Save(); err != nil {
		h.logger.Error("failed to save session", zap.String("user_id", userID), zap.Error(err))
		apierrors.InternalError(c, "Failed to save session")
		return
	}
	apierrors.OK(c, gin.H{"user_id": userID})
}

// DeleteSession removes the session
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}
	apierrors.OK(c, gin.H{"message": "Logged out successfully"})
}
