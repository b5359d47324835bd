package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/constants"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"go.uber.org/zap"
)

// MeetingLoader loads a meeting aggregate by ID and decides who may read it
type MeetingLoader interface {
	GetMeetingWithDetails(ctx context.Context, meetingID string) (*services.MeetingWithDetails, error)
	CanViewMeeting(ctx context.Context, userID string, meeting *services.MeetingWithDetails) bool
}

// RequireMeetingAccess loads the meeting named by the :id parameter and
// stores it in the context. Meetings the caller may not read answer 404.
func RequireMeetingAccess(meetings MeetingLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		meetingID := c.Param("id")
		if meetingID == "" {
			apierrors.BadRequest(c, "Invalid meeting ID")
			return
		}

		meeting, err := meetings.GetMeetingWithDetails(c.Request.Context(), meetingID)
		if err != nil {
			if errors.Is(err, services.ErrMeetingNotFound) {
				apierrors.NotFound(c, "Meeting not found")
				return
			}
			if logger != nil {
				logger.Error("failed to load meeting", zap.String("meeting_id", meetingID), zap.Error(err))
			}
			apierrors.InternalError(c, "Failed to load meeting")
			return
		}

		if !meetings.CanViewMeeting(c.Request.Context(), userID, meeting) {
			apierrors.NotFound(c, "Meeting not found")
			return
		}

		c.Set(constants.ContextKeyMeeting, meeting)
		c.Next()
	}
}

// GetMeeting returns the meeting loaded by RequireMeetingAccess
func GetMeeting(c *gin.Context) (*services.MeetingWithDetails, bool) {
	v, exists := c.Get(constants.ContextKeyMeeting)
	if !exists {
		return nil, false
	}
	meeting, ok := v.(*services.MeetingWithDetails)
	return meeting, ok
}
