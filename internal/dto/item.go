package dto

import (
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/services"
)

// UpdateStatusRequest is the body of PATCH /api/items/:kind/:id/status
type UpdateStatusRequest struct {
	Status             models.TrackStatus `json:"status" binding:"required,trackstatus"`
	ProgressPercentage int                `json:"progress_percentage" binding:"min=0,max=100"`
	Notes              *string            `json:"notes"`
}

// TrackedItemDTO represents a task or commitment with its due state
type TrackedItemDTO struct {
	Kind               models.ItemKind    `json:"kind"`
	ID                 string             `json:"id"`
	MeetingID          string             `json:"meeting_id"`
	Title              string             `json:"title"`
	Priority           models.Priority    `json:"priority,omitempty"`
	AssignedTo         *string            `json:"assigned_to"`
	DueDate            *time.Time         `json:"due_date"`
	Status             models.TrackStatus `json:"status"`
	ProgressPercentage int                `json:"progress_percentage"`
	Notes              *string            `json:"notes"`
	CompletedAt        *time.Time         `json:"completed_at"`
	IsOverdue          bool               `json:"is_overdue"`
	DaysUntilDue       *int               `json:"days_until_due"`
}

func ToTrackedItemDTO(item services.TrackedItem) TrackedItemDTO {
	t := item.Item.Tracking()
	out := TrackedItemDTO{
		Kind:               item.Item.Kind(),
		ID:                 item.Item.ItemID(),
		MeetingID:          item.Item.ItemMeetingID(),
		Title:              item.Item.Heading(),
		AssignedTo:         t.AssignedTo,
		DueDate:            t.DueDate,
		Status:             t.Status,
		ProgressPercentage: t.ProgressPercentage,
		Notes:              t.Notes,
		CompletedAt:        t.CompletedAt,
		IsOverdue:          item.IsOverdue,
		DaysUntilDue:       item.DaysUntilDue,
	}
	if task, ok := item.Item.(*models.Task); ok {
		out.Priority = task.Priority
	}
	return out
}

func ToTrackedItemDTOs(items []services.TrackedItem) []TrackedItemDTO {
	out := make([]TrackedItemDTO, len(items))
	for i, item := range items {
		out[i] = ToTrackedItemDTO(item)
	}
	return out
}
