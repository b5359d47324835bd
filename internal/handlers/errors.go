package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"go.uber.org/zap"
)

// respondServiceError maps service errors to API responses. Unknown errors
// are logged and answered with a generic message.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrMeetingNotFound),
		errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrInstanceNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrGroupSubmissionNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrItemNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInsufficientPermissions),
		errors.Is(err, services.ErrNotGroupMember):
		apierrors.InsufficientPermissions(c, err.Error())
	case errors.Is(err, services.ErrDuplicateGroupMembership):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrMeetingTitleRequired),
		errors.Is(err, services.ErrWorkspaceRequired),
		errors.Is(err, services.ErrMeetingDateRequired),
		errors.Is(err, services.ErrInvalidMeetingStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrTemplateTitleRequired),
		errors.Is(err, services.ErrLessonRequired),
		errors.Is(err, services.ErrCourseRequired),
		errors.Is(err, services.ErrInvalidGroupSize),
		errors.Is(err, services.ErrInvalidDateWindow),
		errors.Is(err, services.ErrInvalidInstanceStatus),
		errors.Is(err, services.ErrInvalidSubmissionStatus),
		errors.Is(err, services.ErrGroupHasNoMembers),
		errors.Is(err, services.ErrUnknownAssignmentSource),
		errors.Is(err, services.ErrNotificationTitleRequired),
		errors.Is(err, services.ErrNotificationUserRequired),
		errors.Is(err, services.ErrNoNotificationIDs),
		errors.Is(err, services.ErrInvalidImportance),
		errors.Is(err, services.ErrNotesRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoItemsGenerated),
		errors.Is(err, services.ErrGroupSubmissionFailed):
		apierrors.OperationFailed(c, err.Error(), nil)
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
	}
}

// respondBindError answers a request whose body or query failed validation
func respondBindError(c *gin.Context, err error) {
	apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
}
