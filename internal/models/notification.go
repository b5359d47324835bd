package models

import "time"

type NotificationImportance string

const (
	ImportanceLow    NotificationImportance = "low"
	ImportanceNormal NotificationImportance = "normal"
	ImportanceHigh   NotificationImportance = "high"
)

type Notification struct {
	UUIDModel
	UserID      string                 `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title       string                 `gorm:"type:varchar(255);not null" json:"title"`
	Description string                 `gorm:"type:text" json:"description"`
	Category    string                 `gorm:"type:varchar(50);not null;default:'general'" json:"category"`
	RelatedURL  *string                `gorm:"type:varchar(512)" json:"related_url"`
	Importance  NotificationImportance `gorm:"type:varchar(20);not null;default:'normal'" json:"importance"`
	ReadAt      *time.Time             `json:"read_at"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func (Notification) TableName() string {
	return "user_notifications"
}
