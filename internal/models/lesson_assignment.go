package models

import "time"

// LegacySubmission is the submission embedded in a lesson assignment group
type LegacySubmission struct {
	Content     string           `json:"content"`
	FileURL     *string          `json:"file_url,omitempty"`
	Status      SubmissionStatus `json:"status"`
	SubmittedBy string           `json:"submitted_by"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	Grade       *float64         `json:"grade,omitempty"`
	Feedback    *string          `json:"feedback,omitempty"`
}

type LessonGroup struct {
	Group
	Submission *LegacySubmission `json:"submission,omitempty"`
}

// LessonAssignment is the per-lesson-block group assignment. Rosters and
// submissions both live in the GroupAssignments column.
type LessonAssignment struct {
	UUIDModel
	LessonID         string        `gorm:"type:varchar(36);not null;index" json:"lesson_id"`
	BlockIndex       int           `gorm:"not null;default:0" json:"block_index"`
	Title            string        `gorm:"type:varchar(255)" json:"title"`
	GroupAssignments []LessonGroup `gorm:"type:text;serializer:json" json:"group_assignments"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (LessonAssignment) TableName() string {
	return "lesson_assignments"
}
