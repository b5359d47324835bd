package models

type Priority string

const (
	PriorityLow      Priority = "baja"
	PriorityMedium   Priority = "media"
	PriorityHigh     Priority = "alta"
	PriorityCritical Priority = "critica"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Task struct {
	UUIDModel
	MeetingID       string   `gorm:"type:varchar(36);not null;index" json:"meeting_id"`
	TaskTitle       string   `gorm:"type:varchar(255);not null" json:"task_title"`
	TaskDescription *string  `gorm:"type:text" json:"task_description"`
	Priority        Priority `gorm:"type:varchar(20);not null;default:'media'" json:"priority"`
	Category        *string  `gorm:"type:varchar(100)" json:"category"`
	EstimatedHours  *float64 `json:"estimated_hours"`
	ActualHours     *float64 `json:"actual_hours"`
	ParentTaskID    *string  `gorm:"type:varchar(36)" json:"parent_task_id"`
	Trackable
}

func (Task) TableName() string {
	return "meeting_tasks"
}

func (t *Task) Kind() ItemKind        { return ItemKindTask }
func (t *Task) ItemID() string        { return t.ID }
func (t *Task) ItemMeetingID() string { return t.MeetingID }
func (t *Task) Heading() string       { return t.TaskTitle }
func (t *Task) Tracking() *Trackable  { return &t.Trackable }
