package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"github.com/yukikurage/community-workspace-api/internal/utils"
)

var (
	ErrNotificationTitleRequired = errors.New("notification title is required")
	ErrNotificationUserRequired  = errors.New("notification recipient is required")
	ErrNoNotificationIDs         = errors.New("at least one notification ID is required")
	ErrInvalidImportance         = errors.New("importance must be low, normal or high")
)

// NotificationService handles in-app notifications
type NotificationService struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// CreateNotificationInput represents input for creating a notification
type CreateNotificationInput struct {
	UserID      string
	Title       string
	Description string
	Category    string
	RelatedURL  *string
	Importance  models.NotificationImportance
}

func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ErrNotificationUserRequired
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrNotificationTitleRequired
	}

	importance := input.Importance
	switch importance {
	case "":
		importance = models.ImportanceNormal
	case models.ImportanceLow, models.ImportanceNormal, models.ImportanceHigh:
	default:
		return nil, ErrInvalidImportance
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "general"
	}

	notification := &models.Notification{
		UserID:      input.UserID,
		Title:       title,
		Description: sanitizeRichText(input.Description),
		Category:    category,
		RelatedURL:  input.RelatedURL,
		Importance:  importance,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

// NotificationPage is one page of a user's notifications
type NotificationPage struct {
	Notifications []models.Notification
	Total         int64
	Unread        int64
}

// List returns the user's notifications newest first
func (s *NotificationService) List(ctx context.Context, userID string, params utils.PaginationParams) (*NotificationPage, error) {
	notifications, total, err := s.repo.ListByUser(ctx, userID, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return &NotificationPage{Notifications: notifications, Total: total, Unread: unread}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks the given notifications of the user as read. IDs owned by
// other users are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoNotificationIDs
	}
	rows, err := s.repo.MarkRead(ctx, userID, ids, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return rows, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	rows, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return rows, nil
}
