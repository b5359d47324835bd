package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("item not found")

// StatusService applies status and progress changes to tasks and commitments
type StatusService struct {
	items  repository.TrackableRepository
	authz  *Authorizer
	logger *zap.Logger
	now    func() time.Time
}

// NewStatusService creates a new StatusService
func NewStatusService(items repository.TrackableRepository, authz *Authorizer, logger *zap.Logger) *StatusService {
	return &StatusService{
		items:  items,
		authz:  authz,
		logger: logging.OrNop(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AuthorizeUpdate fails unless the user may change the item
func (s *StatusService) AuthorizeUpdate(ctx context.Context, userID string, kind models.ItemKind, itemID string) error {
	owner, err := s.items.FindOwnership(ctx, kind, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to find %s: %w", kind, err)
	}
	if !s.authz.CanUpdateItem(ctx, userID, owner) {
		return ErrInsufficientPermissions
	}
	return nil
}

// UpdateStatusInput represents a status change for one trackable item
type UpdateStatusInput struct {
	Kind               models.ItemKind
	ItemID             string
	Status             models.TrackStatus
	ProgressPercentage int
	Notes              *string
}

// StatusResult is the outcome of a status change. Failures never surface as errors.
type StatusResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func failed(message string) StatusResult {
	return StatusResult{Success: false, Error: message}
}

// UpdateStatus persists a status change in a single update statement.
// completado forces 100% progress and 100% progress forces completado; any
// other combination is stored as given and clears completed_at.
func (s *StatusService) UpdateStatus(ctx context.Context, input UpdateStatusInput) StatusResult {
	if _, ok := input.Kind.Table(); !ok {
		return failed(fmt.Sprintf("Unknown item type %q", input.Kind))
	}
	if input.ItemID == "" {
		return failed("Item ID is required")
	}
	if !input.Status.Valid() {
		return failed(fmt.Sprintf("Invalid status %q", input.Status))
	}
	if input.ProgressPercentage < 0 || input.ProgressPercentage > 100 {
		return failed("Progress must be between 0 and 100")
	}

	now := s.now()
	fields := map[string]interface{}{
		"status":              input.Status,
		"progress_percentage": input.ProgressPercentage,
		"completed_at":        nil,
		"updated_at":          now,
	}
	if input.Status == models.TrackStatusCompleted || input.ProgressPercentage == 100 {
		fields["status"] = models.TrackStatusCompleted
		fields["progress_percentage"] = 100
		fields["completed_at"] = now
	}
	if input.Notes != nil {
		fields["notes"] = sanitizeOptional(input.Notes)
	}

	rows, err := s.items.UpdateFields(ctx, input.Kind, input.ItemID, fields)
	if err != nil {
		s.logger.Error("failed to update item status",
			zap.String("kind", string(input.Kind)),
			zap.String("item_id", input.ItemID),
			zap.Error(err),
		)
		return failed(fmt.Sprintf("Failed to update %s status", input.Kind))
	}
	if rows == 0 {
		return failed(fmt.Sprintf("%s not found or insufficient permissions", input.Kind))
	}

	return StatusResult{Success: true}
}

// OverdueUpdate counts the items moved to vencido by one maintenance run
type OverdueUpdate struct {
	Tasks       int64 `json:"tasks"`
	Commitments int64 `json:"commitments"`
}

// UpdateOverdueStatuses materializes vencido for open items past their due date
func (s *StatusService) UpdateOverdueStatuses(ctx context.Context) (OverdueUpdate, error) {
	now := s.now()
	var update OverdueUpdate
	var errs []error

	tasks, err := s.items.MarkOverdue(ctx, models.ItemKindTask, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to mark overdue tasks: %w", err))
	}
	update.Tasks = tasks

	commitments, err := s.items.MarkOverdue(ctx, models.ItemKindCommitment, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to mark overdue commitments: %w", err))
	}
	update.Commitments = commitments

	return update, errors.Join(errs...)
}

// TrackedItem is a trackable item decorated with its read-time due state
type TrackedItem struct {
	Item         models.TrackableItem
	IsOverdue    bool
	DaysUntilDue *int
}

// ListUserItems returns tasks and commitments assigned to a user, optionally
// limited to one workspace, ordered by due date with undated items last
func (s *StatusService) ListUserItems(ctx context.Context, userID string, workspaceID *string) ([]TrackedItem, error) {
	return s.list(ctx, repository.ItemFilter{AssignedTo: &userID, WorkspaceID: workspaceID})
}

// OverdueItems returns open items whose due date has passed. Either scope may be nil.
func (s *StatusService) OverdueItems(ctx context.Context, workspaceID, userID *string) ([]TrackedItem, error) {
	now := s.now()
	return s.list(ctx, repository.ItemFilter{
		AssignedTo:      userID,
		WorkspaceID:     workspaceID,
		DueBefore:       &now,
		ExcludeTerminal: true,
	})
}

func (s *StatusService) list(ctx context.Context, filter repository.ItemFilter) ([]TrackedItem, error) {
	tasks, err := s.items.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	commitments, err := s.items.ListCommitments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list commitments: %w", err)
	}

	now := s.now()
	items := make([]TrackedItem, 0, len(tasks)+len(commitments))
	for i := range tasks {
		items = append(items, s.track(&tasks[i], now))
	}
	for i := range commitments {
		items = append(items, s.track(&commitments[i], now))
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Item.Tracking().DueDate, items[j].Item.Tracking().DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	return items, nil
}

func (s *StatusService) track(item models.TrackableItem, now time.Time) TrackedItem {
	t := item.Tracking()
	return TrackedItem{
		Item:         item,
		IsOverdue:    IsOverdue(t.DueDate, t.Status, now),
		DaysUntilDue: DaysUntilDue(t.DueDate, now),
	}
}
