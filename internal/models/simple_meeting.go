package models

import "time"

// MeetingData is the embedded child payload of a simple meeting row
type MeetingData struct {
	Agreements  []Agreement  `json:"agreements"`
	Commitments []Commitment `json:"commitments"`
	Tasks       []Task       `json:"tasks"`
	Attendees   []Attendee   `json:"attendees"`
}

// SimpleMeeting stores a meeting and its children in a single row. It serves
// deployments whose normalized meeting tables have not been provisioned.
type SimpleMeeting struct {
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
	MeetingData     MeetingData   `gorm:"type:text;serializer:json" json:"meeting_data"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (SimpleMeeting) TableName() string {
	return "simple_meetings"
}

// AsMeeting returns the meeting columns of the row
func (s *SimpleMeeting) AsMeeting() Meeting {
	return Meeting{
		UUIDModel:       UUIDModel{ID: s.ID},
		WorkspaceID:     s.WorkspaceID,
		Title:           s.Title,
		Description:     s.Description,
		MeetingDate:     s.MeetingDate,
		DurationMinutes: s.DurationMinutes,
		Location:        s.Location,
		Status:          s.Status,
		Summary:         s.Summary,
		Notes:           s.Notes,
		CreatedBy:       s.CreatedBy,
		FacilitatorID:   s.FacilitatorID,
		SecretaryID:     s.SecretaryID,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// NewSimpleMeeting packs a meeting and its children into one row
func NewSimpleMeeting(m Meeting, data MeetingData) *SimpleMeeting {
	return &SimpleMeeting{
		UUIDModel:       m.UUIDModel,
		WorkspaceID:     m.WorkspaceID,
		Title:           m.Title,
		Description:     m.Description,
		MeetingDate:     m.MeetingDate,
		DurationMinutes: m.DurationMinutes,
		Location:        m.Location,
		Status:          m.Status,
		Summary:         m.Summary,
		Notes:           m.Notes,
		CreatedBy:       m.CreatedBy,
		FacilitatorID:   m.FacilitatorID,
		SecretaryID:     m.SecretaryID,
		IsActive:        true,
		MeetingData:     data,
	}
}
