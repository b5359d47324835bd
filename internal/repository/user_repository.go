package repository

import (
	"context"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"gorm.io/gorm"
)

// GormProfileRepository is a GORM implementation of ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *GormProfileRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}

func (r *GormProfileRepository) UpdateAvatar(ctx context.Context, id string, avatarURL *string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).
		Updates(map[string]interface{}{"avatar_url": avatarURL, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}
