package dto

import (
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/utils"
)

// CreateNotificationRequest is the body of POST /api/notifications. The
// caller is the recipient when UserID is empty.
type CreateNotificationRequest struct {
	UserID      string                        `json:"user_id"`
	Title       string                        `json:"title" binding:"required,max=255"`
	Description string                        `json:"description"`
	Category    string                        `json:"category" binding:"max=50"`
	RelatedURL  *string                       `json:"related_url" binding:"omitempty,max=512"`
	Importance  models.NotificationImportance `json:"importance" binding:"omitempty,oneof=low normal high"`
}

// MarkReadRequest is the body of POST /api/notifications/mark-read
type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" binding:"required,min=1,dive,required"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []models.Notification    `json:"notifications"`
	UnreadCount   int64                    `json:"unread_count"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// MarkReadResponse reports how many notifications changed
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// UpdateAvatarRequest is the body of PUT /api/me/avatar. A null URL clears the avatar.
type UpdateAvatarRequest struct {
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url,max=512"`
}

// AvatarResponse carries a user's avatar URL
type AvatarResponse struct {
	UserID    string  `json:"user_id"`
	AvatarURL *string `json:"avatar_url"`
}
