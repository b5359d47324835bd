package repository

import (
	"context"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

func (r *GormAssignmentRepository) CreateTemplate(ctx context.Context, template *models.AssignmentTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *GormAssignmentRepository) FindTemplate(ctx context.Context, id string) (*models.AssignmentTemplate, error) {
	var template models.AssignmentTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *GormAssignmentRepository) CreateInstance(ctx context.Context, instance *models.AssignmentInstance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}

func (r *GormAssignmentRepository) FindInstance(ctx context.Context, id string) (*models.AssignmentInstance, error) {
	var instance models.AssignmentInstance
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *GormAssignmentRepository) UpdateInstance(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.AssignmentInstance{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// UpdateInstanceGroups replaces the roster snapshot. A struct update is used so
// the JSON serializer applies.
func (r *GormAssignmentRepository) UpdateInstanceGroups(ctx context.Context, id string, groups []models.Group) (int64, error) {
	if groups == nil {
		groups = []models.Group{}
	}
	result := r.db.WithContext(ctx).
		Model(&models.AssignmentInstance{UUIDModel: models.UUIDModel{ID: id}}).
		Select("groups").
		Updates(&models.AssignmentInstance{Groups: groups})
	return result.RowsAffected, result.Error
}

func (r *GormAssignmentRepository) UpsertSubmission(ctx context.Context, submission *models.AssignmentSubmission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "instance_id"}, {Name: "user_id"}, {Name: "group_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "file_url", "submission_type", "status", "submitted_at", "updated_at",
			}),
		}).
		Create(submission).Error
}

func (r *GormAssignmentRepository) FindSubmission(ctx context.Context, instanceID, userID, groupID string) (*models.AssignmentSubmission, error) {
	var submission models.AssignmentSubmission
	if err := r.db.WithContext(ctx).
		Where("instance_id = ? AND user_id = ? AND group_id = ?", instanceID, userID, groupID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *GormAssignmentRepository) UpsertGroupSubmission(ctx context.Context, submission *models.GroupAssignmentSubmission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "assignment_id"}, {Name: "group_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "file_url", "status", "submitted_at", "updated_at",
			}),
		}).
		Create(submission).Error
}

func (r *GormAssignmentRepository) ListGroupSubmissions(ctx context.Context, assignmentID, groupID string) ([]models.GroupAssignmentSubmission, error) {
	var submissions []models.GroupAssignmentSubmission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND group_id = ?", assignmentID, groupID).
		Order("user_id ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *GormAssignmentRepository) UpdateGroupSubmission(ctx context.Context, assignmentID, groupID, userID string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.GroupAssignmentSubmission{}).
		Where("assignment_id = ? AND group_id = ? AND user_id = ?", assignmentID, groupID, userID).
		Updates(fields)
	return result.RowsAffected, result.Error
}
