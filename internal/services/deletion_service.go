package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"github.com/yukikurage/community-workspace-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MsgMeetingNotFound         = "Meeting not found"
	MsgInsufficientPermissions = "Insufficient permissions to delete this meeting"
)

// DeletionResult reports a cascade delete. Success reflects whether the
// meeting row itself was deleted; Errors lists every step that failed.
type DeletionResult struct {
	Success      bool     `json:"success"`
	DeletedFiles int      `json:"deleted_files"`
	Errors       []string `json:"errors"`
}

// DeleteOptions identifies who is deleting a meeting and why
type DeleteOptions struct {
	UserID string
	Reason string
}

// MutationResult is the outcome of a single-row meeting mutation
type MutationResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeletionService deletes, archives and restores meetings
type DeletionService struct {
	meetings repository.MeetingRepository
	files    storage.FileStore
	authz    *Authorizer
	audit    *AuditLogger
	logger   *zap.Logger
	now      func() time.Time
}

func NewDeletionService(
	meetings repository.MeetingRepository,
	files storage.FileStore,
	authz *Authorizer,
	audit *AuditLogger,
	logger *zap.Logger,
) *DeletionService {
	return &DeletionService{
		meetings: meetings,
		files:    files,
		authz:    authz,
		audit:    audit,
		logger:   logging.OrNop(logger),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CanDeleteMeeting reports whether the user may delete or archive the meeting
func (s *DeletionService) CanDeleteMeeting(ctx context.Context, userID, meetingID string) bool {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to load meeting for permission check", zap.String("meeting_id", meetingID), zap.Error(err))
		}
		return false
	}
	return s.authz.CanDeleteMeeting(ctx, userID, meeting)
}

// DeleteMeeting removes a meeting, its stored files and every child row.
// Permission is checked before anything is removed. Steps after the check are
// best effort: their failures are collected and the cascade continues.
func (s *DeletionService) DeleteMeeting(ctx context.Context, meetingID string, opts DeleteOptions) DeletionResult {
	result := DeletionResult{Errors: []string{}}
	userID := opts.UserID

	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Errors = append(result.Errors, MsgMeetingNotFound)
			return result
		}
		s.logger.Error("failed to load meeting for deletion", zap.String("meeting_id", meetingID), zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load meeting: %v", err))
		return result
	}

	event := AuditEvent{
		MeetingID:   meetingID,
		WorkspaceID: &meeting.WorkspaceID,
		UserID:      userID,
		Action:      AuditMeetingDeleteAttempt,
	}

	if !s.authz.CanDeleteMeeting(ctx, userID, meeting) {
		event.Details = map[string]string{"reason": "insufficient_permissions"}
		s.audit.Log(ctx, event)
		result.Errors = append(result.Errors, MsgInsufficientPermissions)
		return result
	}

	attachments, err := s.meetings.ListAttachments(ctx, meetingID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load attachments: %v", err))
	}

	event.Success = true
	event.Details = map[string]string{
		"title":       meeting.Title,
		"attachments": strconv.Itoa(len(attachments)),
	}
	if opts.Reason != "" {
		event.Details["reason"] = opts.Reason
	}
	s.audit.Log(ctx, event)

	for _, attachment := range attachments {
		if err := s.files.Remove(ctx, attachment.FilePath); err != nil {
			s.logger.Warn("failed to remove attachment file",
				zap.String("meeting_id", meetingID),
				zap.String("path", attachment.FilePath),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to delete file %s: %v", attachment.Filename, err))
			continue
		}
		result.DeletedFiles++
	}

	steps := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"attachments", s.meetings.DeleteAttachments},
		{"tasks", s.meetings.DeleteTasks},
		{"commitments", s.meetings.DeleteCommitments},
		{"agreements", s.meetings.DeleteAgreements},
		{"attendees", s.meetings.DeleteAttendees},
	}
	for _, step := range steps {
		if err := step.fn(ctx, meetingID); err != nil {
			s.logger.Warn("failed to delete meeting collection",
				zap.String("collection", step.name),
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to delete %s: %v", step.name, err))
		}
	}

	rows, err := s.meetings.Delete(ctx, meetingID)
	switch {
	case err != nil:
		s.logger.Error("failed to delete meeting", zap.String("meeting_id", meetingID), zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to delete meeting: %v", err))
	case rows == 0:
		result.Errors = append(result.Errors, MsgInsufficientPermissions)
	default:
		result.Success = true
	}

	s.audit.Log(ctx, AuditEvent{
		MeetingID:   meetingID,
		WorkspaceID: &meeting.WorkspaceID,
		UserID:      userID,
		Action:      AuditMeetingDeleted,
		Success:     result.Success,
		Details: map[string]string{
			"deleted_files": strconv.Itoa(result.DeletedFiles),
			"errors":        strconv.Itoa(len(result.Errors)),
		},
	})
	return result
}

// SoftDeleteMeeting hides a meeting from listings without removing any rows
func (s *DeletionService) SoftDeleteMeeting(ctx context.Context, meetingID, userID string) MutationResult {
	now := s.now()
	return s.mutate(ctx, meetingID, userID, AuditMeetingArchived, map[string]interface{}{
		"is_active":  false,
		"deleted_at": now,
		"deleted_by": userID,
		"updated_at": now,
	})
}

// RestoreMeeting reverses SoftDeleteMeeting
func (s *DeletionService) RestoreMeeting(ctx context.Context, meetingID, userID string) MutationResult {
	return s.mutate(ctx, meetingID, userID, AuditMeetingRestored, map[string]interface{}{
		"is_active":  true,
		"deleted_at": nil,
		"deleted_by": nil,
		"updated_at": s.now(),
	})
}

func (s *DeletionService) mutate(ctx context.Context, meetingID, userID, action string, fields map[string]interface{}) MutationResult {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MutationResult{Error: MsgMeetingNotFound}
		}
		s.logger.Error("failed to load meeting", zap.String("meeting_id", meetingID), zap.Error(err))
		return MutationResult{Error: fmt.Sprintf("Failed to load meeting: %v", err)}
	}
	if !s.authz.CanDeleteMeeting(ctx, userID, meeting) {
		return MutationResult{Error: MsgInsufficientPermissions}
	}

	rows, err := s.meetings.UpdateFields(ctx, meetingID, fields)
	result := MutationResult{Success: err == nil && rows > 0}
	switch {
	case err != nil:
		s.logger.Error("failed to update meeting", zap.String("meeting_id", meetingID), zap.String("action", action), zap.Error(err))
		result.Error = fmt.Sprintf("Failed to update meeting: %v", err)
	case rows == 0:
		result.Error = "Meeting not found or insufficient permissions"
	}

	s.audit.Log(ctx, AuditEvent{
		MeetingID:   meetingID,
		WorkspaceID: &meeting.WorkspaceID,
		UserID:      userID,
		Action:      action,
		Success:     result.Success,
	})
	return result
}

