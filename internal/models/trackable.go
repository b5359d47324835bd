package models

import "time"

type TrackStatus string

const (
	TrackStatusPending    TrackStatus = "pendiente"
	TrackStatusInProgress TrackStatus = "en_progreso"
	TrackStatusCompleted  TrackStatus = "completado"
	TrackStatusOverdue    TrackStatus = "vencido"
	TrackStatusCancelled  TrackStatus = "cancelado"
)

func (s TrackStatus) Valid() bool {
	switch s {
	case TrackStatusPending, TrackStatusInProgress, TrackStatusCompleted,
		TrackStatusOverdue, TrackStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status can no longer become overdue
func (s TrackStatus) Terminal() bool {
	return s == TrackStatusCompleted || s == TrackStatusCancelled
}

type ItemKind string

const (
	ItemKindTask       ItemKind = "task"
	ItemKindCommitment ItemKind = "commitment"
)

// Table returns the table backing the kind
func (k ItemKind) Table() (string, bool) {
	switch k {
	case ItemKindTask:
		return Task{}.TableName(), true
	case ItemKindCommitment:
		return Commitment{}.TableName(), true
	}
	return "", false
}

// Trackable holds the fields shared by tasks and commitments
type Trackable struct {
	AssignedTo         *string     `gorm:"type:varchar(36);index" json:"assigned_to"`
	DueDate            *time.Time  `gorm:"index" json:"due_date"`
	Status             TrackStatus `gorm:"type:varchar(20);not null;default:'pendiente';index" json:"status"`
	ProgressPercentage int         `gorm:"not null;default:0" json:"progress_percentage"`
	Notes              *string     `gorm:"type:text" json:"notes"`
	CompletedAt        *time.Time  `json:"completed_at"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// TrackableItem is implemented by Task and Commitment
type TrackableItem interface {
	Kind() ItemKind
	ItemID() string
	ItemMeetingID() string
	Heading() string
	Tracking() *Trackable
}
