package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/dto"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/middleware"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"github.com/yukikurage/community-workspace-api/internal/utils"
	"go.uber.org/zap"
)

// NotificationHandler serves the caller's in-app notifications
type NotificationHandler struct {
	notifications *services.NotificationService
	authz         *services.Authorizer
	logger        *zap.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, authz *services.Authorizer, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, authz: authz, logger: logging.OrNop(logger)}
}

// List returns a page of the caller's notifications, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	params := utils.GetPaginationParams(c)

	page, err := h.notifications.List(c.Request.Context(), userID, params)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.NotificationListResponse{
		Notifications: page.Notifications,
		UnreadCount:   page.Unread,
		Pagination:    utils.NewPaginationResponse(params, page.Total),
	})
}

// Create stores a notification for the caller. Only admins may address
// another user.
func (h *NotificationHandler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	recipient := req.UserID
	if recipient == "" {
		recipient = userID
	}
	if !h.authz.CanNotify(c.Request.Context(), userID, recipient) {
		apierrors.InsufficientPermissions(c, "You cannot notify other users")
		return
	}

	notification, err := h.notifications.Create(c.Request.Context(), services.CreateNotificationInput{
		UserID:      recipient,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		RelatedURL:  req.RelatedURL,
		Importance:  req.Importance,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.Created(c, notification)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.notifications.MarkRead(c.Request.Context(), userID, req.NotificationIDs)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.MarkReadResponse{Updated: updated})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	updated, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.MarkReadResponse{Updated: updated})
}
