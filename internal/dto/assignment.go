package dto

import (
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/services"
)

// CreateTemplateRequest is the body of POST /api/assignment-templates
type CreateTemplateRequest struct {
	LessonID       string `json:"lesson_id" binding:"required"`
	BlockIndex     int    `json:"block_index" binding:"min=0"`
	Title          string `json:"title" binding:"required,max=255"`
	Description    string `json:"description"`
	Instructions   string `json:"instructions"`
	MinGroupSize   int    `json:"min_group_size" binding:"omitempty,min=1"`
	MaxGroupSize   int    `json:"max_group_size" binding:"omitempty,min=1"`
	AssignmentType string `json:"assignment_type" binding:"omitempty,oneof=individual group"`
}

func (r CreateTemplateRequest) ToInput(userID string) services.CreateTemplateInput {
	return services.CreateTemplateInput{
		LessonID:       r.LessonID,
		BlockIndex:     r.BlockIndex,
		Title:          r.Title,
		Description:    r.Description,
		Instructions:   r.Instructions,
		MinGroupSize:   r.MinGroupSize,
		MaxGroupSize:   r.MaxGroupSize,
		AssignmentType: r.AssignmentType,
		CreatedBy:      userID,
	}
}

// CreateInstanceRequest is the body of POST /api/assignment-instances
type CreateInstanceRequest struct {
	TemplateID   string                `json:"template_id" binding:"required"`
	CourseID     string                `json:"course_id" binding:"required"`
	SchoolID     *string               `json:"school_id"`
	CommunityID  *string               `json:"community_id"`
	CohortName   *string               `json:"cohort_name"`
	Title        string                `json:"title" binding:"max=255"`
	Description  string                `json:"description"`
	Instructions string                `json:"instructions"`
	StartDate    *time.Time            `json:"start_date"`
	DueDate      *time.Time            `json:"due_date"`
	Status       models.InstanceStatus `json:"status" binding:"omitempty,oneof=draft active completed archived"`
	Groups       []models.Group        `json:"groups"`
}

func (r CreateInstanceRequest) ToInput(userID string) services.CreateInstanceInput {
	return services.CreateInstanceInput{
		TemplateID:   r.TemplateID,
		CourseID:     r.CourseID,
		SchoolID:     r.SchoolID,
		CommunityID:  r.CommunityID,
		CohortName:   r.CohortName,
		Title:        r.Title,
		Description:  r.Description,
		Instructions: r.Instructions,
		StartDate:    r.StartDate,
		DueDate:      r.DueDate,
		Status:       r.Status,
		Groups:       r.Groups,
		CreatedBy:    userID,
	}
}

// UpdateGroupsRequest is the body of PUT /api/assignment-instances/:id/groups
type UpdateGroupsRequest struct {
	Groups []models.Group `json:"groups" binding:"required"`
}

// SubmitAssignmentRequest is the body of POST /api/assignment-instances/:id/submissions
type SubmitAssignmentRequest struct {
	GroupID        string                  `json:"group_id"`
	Content        string                  `json:"content"`
	FileURL        *string                 `json:"file_url" binding:"omitempty,url"`
	SubmissionType string                  `json:"submission_type" binding:"omitempty,oneof=text file link"`
	Status         models.SubmissionStatus `json:"status" binding:"omitempty,oneof=draft pending submitted"`
}

// GroupSubmissionRequest is the body of a group submission
type GroupSubmissionRequest struct {
	Content string  `json:"content"`
	FileURL *string `json:"file_url" binding:"omitempty,url"`
}

func (r GroupSubmissionRequest) ToPayload(userID string) services.GroupSubmissionPayload {
	return services.GroupSubmissionPayload{SubmittedBy: userID, Content: r.Content, FileURL: r.FileURL}
}

// GradeRequest is the body of POST /api/assignment-instances/:id/groups/:group_id/grade
type GradeRequest struct {
	Grade    *float64 `json:"grade" binding:"required,gte=0"`
	Feedback *string  `json:"feedback"`
}

// MyGroupResponse is the caller's group, or null when the caller is in none
type MyGroupResponse struct {
	Group *models.Group `json:"group"`
}
