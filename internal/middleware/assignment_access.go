package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"go.uber.org/zap"
)

// InstanceManagerChecker loads an assignment instance the user may manage
type InstanceManagerChecker interface {
	AuthorizeInstanceManager(ctx context.Context, userID, instanceID string) (*models.AssignmentInstance, error)
}

// RequireInstanceManager lets through only callers who may manage the
// instance named by the :id parameter
func RequireInstanceManager(checker InstanceManagerChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		instanceID := c.Param("id")
		_, err := checker.AuthorizeInstanceManager(c.Request.Context(), userID, instanceID)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrInstanceNotFound):
			apierrors.NotFound(c, "Assignment instance not found")
			return
		case errors.Is(err, services.ErrInsufficientPermissions):
			apierrors.InsufficientPermissions(c, "You cannot manage this assignment")
			return
		default:
			if logger != nil {
				logger.Error("failed to load assignment instance", zap.String("instance_id", instanceID), zap.Error(err))
			}
			apierrors.InternalError(c, "Failed to load assignment instance")
			return
		}

		c.Next()
	}
}
