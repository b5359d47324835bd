package models

import "time"

// Community is a growth community (school + generation) that owns a workspace
type Community struct {
	UUIDModel
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	SchoolID  *string   `gorm:"type:varchar(36);index" json:"school_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Community) TableName() string {
	return "growth_communities"
}

type Workspace struct {
	UUIDModel
	CommunityID string    `gorm:"type:varchar(36);not null;index" json:"community_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Workspace) TableName() string {
	return "community_workspaces"
}

type RoleType string

const (
	RoleAdmin           RoleType = "admin"
	RoleCommunityLeader RoleType = "lider_comunidad"
	RoleConsultant      RoleType = "consultor"
	RoleTeacher         RoleType = "docente"
)

type UserRole struct {
	UUIDModel
	UserID      string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	RoleType    RoleType  `gorm:"type:varchar(30);not null" json:"role_type"`
	CommunityID *string   `gorm:"type:varchar(36)" json:"community_id"`
	SchoolID    *string   `gorm:"type:varchar(36)" json:"school_id"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
