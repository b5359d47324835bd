package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/dto"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/middleware"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"go.uber.org/zap"
)

// ItemHandler serves task and commitment tracking endpoints
type ItemHandler struct {
	status *services.StatusService
	logger *zap.Logger
}

func NewItemHandler(status *services.StatusService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{status: status, logger: logging.OrNop(logger)}
}

// UpdateStatus changes the status and progress of a task or commitment
func (h *ItemHandler) UpdateStatus(c *gin.Context) {
	kind := models.ItemKind(c.Param("kind"))
	if _, ok := kind.Table(); !ok {
		apierrors.BadRequest(c, "Item kind must be task or commitment")
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.status.AuthorizeUpdate(c.Request.Context(), userID, kind, c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	result := h.status.UpdateStatus(c.Request.Context(), services.UpdateStatusInput{
		Kind:               kind,
		ItemID:             c.Param("id"),
		Status:             req.Status,
		ProgressPercentage: req.ProgressPercentage,
		Notes:              req.Notes,
	})
	if !result.Success {
		switch {
		case strings.Contains(result.Error, "not found"):
			apierrors.NotFound(c, result.Error)
		case strings.HasPrefix(result.Error, "Failed to"):
			apierrors.InternalError(c, result.Error)
		default:
			apierrors.BadRequest(c, result.Error)
		}
		return
	}
	apierrors.OK(c, result)
}

// MyItems lists the caller's tasks and commitments, optionally for one workspace
func (h *ItemHandler) MyItems(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	var workspaceID *string
	if raw := c.Query("workspace_id"); raw != "" {
		workspaceID = &raw
	}

	items, err := h.status.ListUserItems(c.Request.Context(), userID, workspaceID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, gin.H{"items": dto.ToTrackedItemDTOs(items)})
}
