package repository

import (
	"context"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"gorm.io/gorm"
)

// GormCommunityRepository is a GORM implementation of CommunityRepository
type GormCommunityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &GormCommunityRepository{db: db}
}

func (r *GormCommunityRepository) FindWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&workspace).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

func (r *GormCommunityRepository) FindCommunity(ctx context.Context, id string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&community).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

// GormRoleRepository is a GORM implementation of RoleRepository
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &GormRoleRepository{db: db}
}

func (r *GormRoleRepository) activeRoles(ctx context.Context, userID string, role models.RoleType) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role_type = ? AND is_active = ?", userID, role, true)
}

func (r *GormRoleRepository) HasRole(ctx context.Context, userID string, role models.RoleType) (bool, error) {
	var count int64
	err := r.activeRoles(ctx, userID, role).Count(&count).Error
	return count > 0, err
}

func (r *GormRoleRepository) HasCommunityRole(ctx context.Context, userID string, role models.RoleType, communityID string) (bool, error) {
	var count int64
	err := r.activeRoles(ctx, userID, role).Where("community_id = ?", communityID).Count(&count).Error
	return count > 0, err
}

func (r *GormRoleRepository) HasSchoolRole(ctx context.Context, userID string, role models.RoleType, schoolID string) (bool, error) {
	var count int64
	err := r.activeRoles(ctx, userID, role).Where("school_id = ?", schoolID).Count(&count).Error
	return count > 0, err
}
