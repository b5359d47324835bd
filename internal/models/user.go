package models

import (
	"strings"
	"time"
)

// Profile mirrors the auth provider's user. ID is the provider's user ID.
type Profile struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100)" json:"last_name"`
	Email     string    `gorm:"type:varchar(255);index" json:"email"`
	AvatarURL *string   `gorm:"type:varchar(512)" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
