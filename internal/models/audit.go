package models

import "time"

type AuditEntry struct {
	UUIDModel
	MeetingID   string            `gorm:"type:varchar(36);not null;index" json:"meeting_id"`
	WorkspaceID *string           `gorm:"type:varchar(36)" json:"workspace_id"`
	UserID      string            `gorm:"type:varchar(36);not null" json:"user_id"`
	Action      string            `gorm:"type:varchar(50);not null" json:"action"`
	Success     bool              `json:"success"`
	Details     map[string]string `gorm:"type:text;serializer:json" json:"details"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "meeting_audit_log"
}
