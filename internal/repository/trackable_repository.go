package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"gorm.io/gorm"
)

// GormTrackableRepository is a GORM implementation of TrackableRepository
type GormTrackableRepository struct {
	db *gorm.DB
}

// NewTrackableRepository creates a new TrackableRepository
func NewTrackableRepository(db *gorm.DB) TrackableRepository {
	return &GormTrackableRepository{db: db}
}

func tableFor(kind models.ItemKind) (string, error) {
	table, ok := kind.Table()
	if !ok {
		return "", fmt.Errorf("unknown item kind %q", kind)
	}
	return table, nil
}

func (r *GormTrackableRepository) UpdateFields(ctx context.Context, kind models.ItemKind, id string, fields map[string]interface{}) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Table(table).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *GormTrackableRepository) MarkOverdue(ctx context.Context, kind models.ItemKind, now time.Time) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Table(table).
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Where("status IN ?", []models.TrackStatus{models.TrackStatusPending, models.TrackStatusInProgress}).
		Updates(map[string]interface{}{
			"status":     models.TrackStatusOverdue,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *GormTrackableRepository) FindOwnership(ctx context.Context, kind models.ItemKind, id string) (*ItemOwnership, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var owners []ItemOwnership
	err = r.db.WithContext(ctx).Table(table).
		Select(table+".assigned_to AS assigned_to, community_meetings.created_by AS meeting_created_by, community_meetings.workspace_id AS workspace_id").
		Joins("JOIN community_meetings ON community_meetings.id = "+table+".meeting_id").
		Where(table+".id = ?", id).
		Limit(1).
		Scan(&owners).Error
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &owners[0], nil
}

func (r *GormTrackableRepository) scoped(ctx context.Context, table string, filter ItemFilter) *gorm.DB {
	// items of archived meetings are hidden
	query := r.db.WithContext(ctx).Table(table).Select(table+".*").
		Joins("JOIN community_meetings ON community_meetings.id = "+table+".meeting_id").
		Where("community_meetings.is_active = ?", true)

	if filter.WorkspaceID != nil {
		query = query.Where("community_meetings.workspace_id = ?", *filter.WorkspaceID)
	}
	if filter.AssignedTo != nil {
		query = query.Where(table+".assigned_to = ?", *filter.AssignedTo)
	}
	if filter.DueBefore != nil {
		query = query.Where(table+".due_date IS NOT NULL AND "+table+".due_date < ?", *filter.DueBefore)
	}
	if filter.ExcludeTerminal {
		query = query.Where(table+".status NOT IN ?", []models.TrackStatus{models.TrackStatusCompleted, models.TrackStatusCancelled})
	}

	return query.Order("CASE WHEN " + table + ".due_date IS NULL THEN 1 ELSE 0 END, " + table + ".due_date ASC")
}

func (r *GormTrackableRepository) ListTasks(ctx context.Context, filter ItemFilter) ([]models.Task, error) {
	var tasks []models.Task
	err := r.scoped(ctx, models.Task{}.TableName(), filter).Find(&tasks).Error
	return tasks, err
}

func (r *GormTrackableRepository) ListCommitments(ctx context.Context, filter ItemFilter) ([]models.Commitment, error) {
	var commitments []models.Commitment
	err := r.scoped(ctx, models.Commitment{}.TableName(), filter).Find(&commitments).Error
	return commitments, err
}
