package services

import (
	"context"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"go.uber.org/zap"
)

// Audit actions
const (
	AuditMeetingCreated       = "meeting_created"
	AuditMeetingUpdated       = "meeting_updated"
	AuditMeetingDeleteAttempt = "meeting_delete_attempt"
	AuditMeetingDeleted       = "meeting_deleted"
	AuditMeetingArchived      = "meeting_archived"
	AuditMeetingRestored      = "meeting_restored"
)

// Audit modes
const (
	AuditModeAll = "all"
	AuditModeDB  = "db"
	AuditModeLog = "log"
	AuditModeOff = "off"
)

// AuditEvent describes one audited meeting operation
type AuditEvent struct {
	MeetingID   string
	WorkspaceID *string
	UserID      string
	Action      string
	Success     bool
	Details     map[string]string
}

// AuditLogger records meeting operations to the log, the audit table, or both.
// Recording is best effort and never fails the audited operation. A nil
// *AuditLogger is valid and records nothing.
type AuditLogger struct {
	repo   repository.AuditRepository
	logger *zap.Logger
	mode   string
	now    func() time.Time
}

func NewAuditLogger(repo repository.AuditRepository, logger *zap.Logger, mode string) *AuditLogger {
	if mode == "" {
		mode = AuditModeAll
	}
	return &AuditLogger{
		repo:   repo,
		logger: logging.OrNop(logger),
		mode:   mode,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	if l == nil || l.mode == AuditModeOff {
		return
	}

	if l.mode == AuditModeAll || l.mode == AuditModeLog {
		fields := []zap.Field{
			zap.String("action", event.Action),
			zap.String("meeting_id", event.MeetingID),
			zap.String("user_id", event.UserID),
			zap.Bool("success", event.Success),
		}
		if event.WorkspaceID != nil {
			fields = append(fields, zap.String("workspace_id", *event.WorkspaceID))
		}
		for k, v := range event.Details {
			fields = append(fields, zap.String("detail."+k, v))
		}
		l.logger.Info("audit", fields...)
	}

	if (l.mode == AuditModeAll || l.mode == AuditModeDB) && l.repo != nil {
		entry := &models.AuditEntry{
			MeetingID:   event.MeetingID,
			WorkspaceID: event.WorkspaceID,
			UserID:      event.UserID,
			Action:      event.Action,
			Success:     event.Success,
			Details:     event.Details,
			CreatedAt:   l.now(),
		}
		if err := l.repo.Create(ctx, entry); err != nil {
			l.logger.Warn("failed to write audit entry",
				zap.String("action", event.Action),
				zap.String("meeting_id", event.MeetingID),
				zap.Error(err),
			)
		}
	}
}
