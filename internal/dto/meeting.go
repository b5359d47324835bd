package dto

import (
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"github.com/yukikurage/community-workspace-api/internal/utils"
)

// AgreementRequest is one agreement in a meeting's documentation
type AgreementRequest struct {
	Text     string  `json:"agreement_text"`
	Category *string `json:"category"`
}

// CommitmentRequest is one commitment in a meeting's documentation
type CommitmentRequest struct {
	Text       string     `json:"commitment_text"`
	AssignedTo *string    `json:"assigned_to"`
	DueDate    *time.Time `json:"due_date"`
}

// TaskRequest is one task in a meeting's documentation
type TaskRequest struct {
	Title          string          `json:"task_title"`
	Description    *string         `json:"task_description"`
	AssignedTo     *string         `json:"assigned_to"`
	DueDate        *time.Time      `json:"due_date"`
	Priority       models.Priority `json:"priority" binding:"omitempty,priority"`
	Category       *string         `json:"category"`
	EstimatedHours *float64        `json:"estimated_hours" binding:"omitempty,gte=0"`
}

// DocumentationRequest is the written record of a meeting. Entries with blank
// text are skipped.
type DocumentationRequest struct {
	Summary     *string             `json:"summary"`
	Notes       *string             `json:"notes"`
	Agreements  []AgreementRequest  `json:"agreements"`
	Commitments []CommitmentRequest `json:"commitments"`
	Tasks       []TaskRequest       `json:"tasks" binding:"dive"`
}

func (r DocumentationRequest) ToDocumentation() services.MeetingDocumentation {
	doc := services.MeetingDocumentation{
		Summary:     r.Summary,
		Notes:       r.Notes,
		Agreements:  make([]services.AgreementInput, len(r.Agreements)),
		Commitments: make([]services.CommitmentInput, len(r.Commitments)),
		Tasks:       make([]services.TaskInput, len(r.Tasks)),
	}
	for i, a := range r.Agreements {
		doc.Agreements[i] = services.AgreementInput{Text: a.Text, Category: a.Category}
	}
	for i, c := range r.Commitments {
		doc.Commitments[i] = services.CommitmentInput{Text: c.Text, AssignedTo: c.AssignedTo, DueDate: c.DueDate}
	}
	for i, t := range r.Tasks {
		doc.Tasks[i] = services.TaskInput{
			Title:          t.Title,
			Description:    t.Description,
			AssignedTo:     t.AssignedTo,
			DueDate:        t.DueDate,
			Priority:       t.Priority,
			Category:       t.Category,
			EstimatedHours: t.EstimatedHours,
		}
	}
	return doc
}

// CreateMeetingRequest is the body of POST /api/workspaces/:id/meetings
type CreateMeetingRequest struct {
	Title           string               `json:"title" binding:"required,max=255"`
	Description     *string              `json:"description"`
	MeetingDate     time.Time            `json:"meeting_date" binding:"required"`
	DurationMinutes int                  `json:"duration_minutes" binding:"omitempty,min=1,max=1440"`
	Location        *string              `json:"location"`
	Status          models.MeetingStatus `json:"status" binding:"omitempty,meetingstatus"`
	FacilitatorID   *string              `json:"facilitator_id"`
	SecretaryID     *string              `json:"secretary_id"`
	AttendeeIDs     []string             `json:"attendee_ids"`
	Documentation   DocumentationRequest `json:"documentation"`
}

func (r CreateMeetingRequest) ToInput(workspaceID, userID string) services.CreateMeetingInput {
	return services.CreateMeetingInput{
		WorkspaceID:     workspaceID,
		CreatedBy:       userID,
		Title:           r.Title,
		Description:     r.Description,
		MeetingDate:     r.MeetingDate,
		DurationMinutes: r.DurationMinutes,
		Location:        r.Location,
		Status:          r.Status,
		FacilitatorID:   r.FacilitatorID,
		SecretaryID:     r.SecretaryID,
		AttendeeIDs:     r.AttendeeIDs,
		Documentation:   r.Documentation.ToDocumentation(),
	}
}

// UpdateDocumentationRequest is the body of PUT /api/meetings/:id/documentation
type UpdateDocumentationRequest struct {
	Status *models.MeetingStatus `json:"status" binding:"omitempty,meetingstatus"`
	DocumentationRequest
}

// DeleteMeetingRequest is the optional body of DELETE /api/meetings/:id
type DeleteMeetingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// SuggestItemsRequest is the body of POST /api/meetings/:id/suggest-items.
// The meeting's stored notes are used when Notes is empty.
type SuggestItemsRequest struct {
	Notes string `json:"notes"`
}

// MeetingWriteResponse is returned after a meeting is created or documented
type MeetingWriteResponse struct {
	Meeting *services.MeetingWithDetails `json:"meeting"`
	Errors  []string                     `json:"errors"`
}

func ToMeetingWriteResponse(result *services.MeetingWriteResult) MeetingWriteResponse {
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	return MeetingWriteResponse{Meeting: result.Meeting, Errors: errs}
}

// MeetingListResponse represents a paginated list of meetings
type MeetingListResponse struct {
	Meetings   []models.Meeting         `json:"meetings"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// CanDeleteResponse reports whether the current user may delete a meeting
type CanDeleteResponse struct {
	CanDelete bool `json:"can_delete"`
}
