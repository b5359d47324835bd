package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/dto"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/middleware"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"go.uber.org/zap"
)

type AvatarHandler struct {
	avatars *services.AvatarCache
	logger  *zap.Logger
}

func NewAvatarHandler(avatars *services.AvatarCache, logger *zap.Logger) *AvatarHandler {
	return &AvatarHandler{avatars: avatars, logger: logging.OrNop(logger)}
}

func (h *AvatarHandler) Get(c *gin.Context) {
	userID := c.Param("id")
	url, err := h.avatars.Get(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.AvatarResponse{UserID: userID, AvatarURL: url})
}

// UpdateMine sets or clears the caller's avatar
func (h *AvatarHandler) UpdateMine(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.avatars.Update(c.Request.Context(), userID, req.AvatarURL); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.AvatarResponse{UserID: userID, AvatarURL: req.AvatarURL})
}
