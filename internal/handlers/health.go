package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewHealthHandler(db *gorm.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logging.OrNop(logger)}
}

// Health reports whether the database answers
func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		apierrors.ServiceUnavailable(c, "Database unavailable")
		return
	}
	apierrors.OK(c, gin.H{"status": "ok"})
}
