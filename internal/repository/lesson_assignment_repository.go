package repository

import (
	"context"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"gorm.io/gorm"
)

// GormLessonAssignmentRepository is a GORM implementation of LessonAssignmentRepository
type GormLessonAssignmentRepository struct {
	db *gorm.DB
}

// NewLessonAssignmentRepository creates a new LessonAssignmentRepository
func NewLessonAssignmentRepository(db *gorm.DB) LessonAssignmentRepository {
	return &GormLessonAssignmentRepository{db: db}
}

func (r *GormLessonAssignmentRepository) Create(ctx context.Context, assignment *models.LessonAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *GormLessonAssignmentRepository) FindByID(ctx context.Context, id string) (*models.LessonAssignment, error) {
	var assignment models.LessonAssignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *GormLessonAssignmentRepository) UpdateGroups(ctx context.Context, id string, groups []models.LessonGroup) (int64, error) {
	if groups == nil {
		groups = []models.LessonGroup{}
	}
	result := r.db.WithContext(ctx).
		Model(&models.LessonAssignment{UUIDModel: models.UUIDModel{ID: id}}).
		Select("group_assignments").
		Updates(&models.LessonAssignment{GroupAssignments: groups})
	return result.RowsAffected, result.Error
}
