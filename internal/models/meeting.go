package models

import "time"

type MeetingStatus string

const (
	MeetingStatusScheduled  MeetingStatus = "programada"
	MeetingStatusInProgress MeetingStatus = "en_progreso"
	MeetingStatusCompleted  MeetingStatus = "completada"
	MeetingStatusCancelled  MeetingStatus = "cancelada"
	MeetingStatusPostponed  MeetingStatus = "pospuesta"
)

func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingStatusScheduled, MeetingStatusInProgress, MeetingStatusCompleted,
		MeetingStatusCancelled, MeetingStatusPostponed:
		return true
	}
	return false
}

// Meeting is a community workspace meeting. Inactive meetings are hidden from
// listings but still load by ID.
type Meeting struct {
	UUIDModel
	WorkspaceID     string        `gorm:"type:varchar(36);not null;index" json:"workspace_id"`
	Title           string        `gorm:"type:varchar(255);not null" json:"title"`
	Description     *string       `gorm:"type:text" json:"description"`
	MeetingDate     time.Time     `gorm:"not null" json:"meeting_date"`
	DurationMinutes int           `gorm:"not null;default:60" json:"duration_minutes"`
	Location        *string       `gorm:"type:varchar(255)" json:"location"`
	Status          MeetingStatus `gorm:"type:varchar(20);not null;default:'programada'" json:"status"`
	Summary         *string       `gorm:"type:text" json:"summary"`
	Notes           *string       `gorm:"type:text" json:"notes"`
	CreatedBy       string        `gorm:"type:varchar(36);not null" json:"created_by"`
	FacilitatorID   *string       `gorm:"type:varchar(36)" json:"facilitator_id"`
	SecretaryID     *string       `gorm:"type:varchar(36)" json:"secretary_id"`
	IsActive        bool          `gorm:"not null;default:true" json:"is_active"`
	DeletedAt       *time.Time    `json:"deleted_at"`
	DeletedBy       *string       `gorm:"type:varchar(36)" json:"deleted_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Meeting) TableName() string {
	return "community_meetings"
}

type Agreement struct {
	UUIDModel
	MeetingID     string    `gorm:"type:varchar(36);not null;index" json:"meeting_id"`
	AgreementText string    `gorm:"type:text;not null" json:"agreement_text"`
	OrderIndex    int       `gorm:"not null;default:0" json:"order_index"`
	Category      *string   `gorm:"type:varchar(100)" json:"category"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Agreement) TableName() string {
	return "meeting_agreements"
}

type AttendanceStatus string

const (
	AttendanceInvited   AttendanceStatus = "invited"
	AttendanceConfirmed AttendanceStatus = "confirmed"
	AttendanceAttended  AttendanceStatus = "attended"
	AttendanceAbsent    AttendanceStatus = "absent"
	AttendanceLate      AttendanceStatus = "late"
)

type AttendeeRole string

const (
	AttendeeFacilitator AttendeeRole = "facilitator"
	AttendeeSecretary   AttendeeRole = "secretary"
	AttendeeParticipant AttendeeRole = "participant"
	AttendeeObserver    AttendeeRole = "observer"
)

type Attendee struct {
	UUIDModel
	MeetingID        string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_meeting_attendee" json:"meeting_id"`
	UserID           string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_meeting_attendee" json:"user_id"`
	AttendanceStatus AttendanceStatus `gorm:"type:varchar(20);not null;default:'invited'" json:"attendance_status"`
	Role             AttendeeRole     `gorm:"type:varchar(20);not null;default:'participant'" json:"role"`
	CreatedAt        time.Time        `json:"created_at"`
}

func (Attendee) TableName() string {
	return "meeting_attendees"
}

// Attachment is the metadata row for a file kept in object storage
type Attachment struct {
	UUIDModel
	MeetingID  string    `gorm:"type:varchar(36);not null;index" json:"meeting_id"`
	Filename   string    `gorm:"type:varchar(255);not null" json:"filename"`
	FilePath   string    `gorm:"type:varchar(512);not null" json:"file_path"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `gorm:"type:varchar(100)" json:"file_type"`
	UploadedBy string    `gorm:"type:varchar(36)" json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (Attachment) TableName() string {
	return "meeting_attachments"
}
