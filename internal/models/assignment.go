package models

import "time"

// AssignmentTemplate is authored once inside a lesson block
type AssignmentTemplate struct {
	UUIDModel
	LessonID       string    `gorm:"type:varchar(36);not null;index" json:"lesson_id"`
	BlockIndex     int       `gorm:"not null;default:0" json:"block_index"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Instructions   string    `gorm:"type:text" json:"instructions"`
	MinGroupSize   int       `gorm:"not null;default:1" json:"min_group_size"`
	MaxGroupSize   int       `gorm:"not null;default:1" json:"max_group_size"`
	AssignmentType string    `gorm:"type:varchar(30);not null;default:'individual'" json:"assignment_type"`
	CreatedBy      string    `gorm:"type:varchar(36)" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (AssignmentTemplate) TableName() string {
	return "assignment_templates"
}

type InstanceStatus string

const (
	InstanceStatusDraft     InstanceStatus = "draft"
	InstanceStatusActive    InstanceStatus = "active"
	InstanceStatusCompleted InstanceStatus = "completed"
	InstanceStatusArchived  InstanceStatus = "archived"
)

func (s InstanceStatus) Valid() bool {
	switch s {
	case InstanceStatusDraft, InstanceStatusActive, InstanceStatusCompleted, InstanceStatusArchived:
		return true
	}
	return false
}

type GroupMember struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Group is a roster snapshot stored on the owning assignment row
type Group struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Members []GroupMember `json:"members"`
}

// HasMember reports whether userID is on the roster
func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the distinct member IDs in roster order
func (g Group) MemberIDs() []string {
	seen := make(map[string]struct{}, len(g.Members))
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m.ID == "" {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		ids = append(ids, m.ID)
	}
	return ids
}

// AssignmentInstance is a scheduled deployment of a template to an audience
type AssignmentInstance struct {
	UUIDModel
	TemplateID   string         `gorm:"type:varchar(36);not null;index" json:"template_id"`
	CourseID     string         `gorm:"type:varchar(36);not null;index" json:"course_id"`
	SchoolID     *string        `gorm:"type:varchar(36)" json:"school_id"`
	CommunityID  *string        `gorm:"type:varchar(36)" json:"community_id"`
	CohortName   *string        `gorm:"type:varchar(100)" json:"cohort_name"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Instructions string         `gorm:"type:text" json:"instructions"`
	StartDate    *time.Time     `json:"start_date"`
	DueDate      *time.Time     `json:"due_date"`
	Status       InstanceStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	Groups       []Group        `gorm:"type:text;serializer:json" json:"groups"`
	CreatedBy    string         `gorm:"type:varchar(36)" json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (AssignmentInstance) TableName() string {
	return "assignment_instances"
}

type SubmissionStatus string

const (
	SubmissionStatusDraft     SubmissionStatus = "draft"
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusReviewed  SubmissionStatus = "reviewed"
	SubmissionStatusGraded    SubmissionStatus = "graded"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusDraft, SubmissionStatusPending, SubmissionStatusSubmitted,
		SubmissionStatusReviewed, SubmissionStatusGraded:
		return true
	}
	return false
}

// AssignmentSubmission is one row per (instance, user, group). GroupID is empty
// for individual work.
type AssignmentSubmission struct {
	UUIDModel
	InstanceID     string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignment_submission_key" json:"instance_id"`
	UserID         string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignment_submission_key" json:"user_id"`
	GroupID        string           `gorm:"type:varchar(36);not null;default:'';uniqueIndex:idx_assignment_submission_key" json:"group_id"`
	Content        string           `gorm:"type:text" json:"content"`
	FileURL        *string          `gorm:"type:varchar(512)" json:"file_url"`
	SubmissionType string           `gorm:"type:varchar(30);not null;default:'text'" json:"submission_type"`
	Status         SubmissionStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	Grade          *float64         `json:"grade"`
	Feedback       *string          `gorm:"type:text" json:"feedback"`
	SubmittedAt    *time.Time       `json:"submitted_at"`
	GradedAt       *time.Time       `json:"graded_at"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}

// GroupAssignmentSubmission is the per-member row of a group submission. The
// group's state is the state shared by all of its member rows.
type GroupAssignmentSubmission struct {
	UUIDModel
	AssignmentID string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_group_submission_member" json:"assignment_id"`
	GroupID      string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_group_submission_member" json:"group_id"`
	UserID       string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_group_submission_member" json:"user_id"`
	Content      string           `gorm:"type:text" json:"content"`
	FileURL      *string          `gorm:"type:varchar(512)" json:"file_url"`
	Status       SubmissionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Grade        *float64         `json:"grade"`
	Feedback     *string          `gorm:"type:text" json:"feedback"`
	GradedBy     *string          `gorm:"type:varchar(36)" json:"graded_by"`
	GradedAt     *time.Time       `json:"graded_at"`
	SubmittedAt  *time.Time       `json:"submitted_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (GroupAssignmentSubmission) TableName() string {
	return "group_assignment_submissions"
}
