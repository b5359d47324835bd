package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/community-workspace-api/internal/database"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/utils"
	"gorm.io/gorm"
)

// GormMeetingRepository is a GORM implementation of MeetingRepository
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new MeetingRepository
func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &GormMeetingRepository{db: db}
}

var meetingSortColumns = map[string]string{
	"meeting_date": "meeting_date",
	"title":        "title",
	"status":       "status",
	"created_at":   "created_at",
}

// taskPriorityOrder ranks tasks critica first, then by due date with undated tasks last
const taskPriorityOrder = "CASE priority WHEN 'critica' THEN 4 WHEN 'alta' THEN 3 WHEN 'media' THEN 2 WHEN 'baja' THEN 1 ELSE 0 END DESC"

func (r *GormMeetingRepository) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *GormMeetingRepository) List(ctx context.Context, filter MeetingFilter) ([]models.Meeting, int64, error) {
	var meetings []models.Meeting

	query := r.db.WithContext(ctx).Model(&models.Meeting{}).Where("workspace_id = ?", filter.WorkspaceID)
	if !filter.IncludeInactive {
		query = query.Scopes(database.ActiveOnly)
	}

	// Apply filters
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.DateFrom != nil {
		query = query.Where("meeting_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("meeting_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		// case-insensitive on every dialect; postgres LIKE is case-sensitive
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := meetingSortColumns[filter.SortBy]
	if !ok {
		column = "meeting_date"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	listQuery := query.Order(column + " " + direction)

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&meetings).Error; err != nil {
		return nil, 0, err
	}

	return meetings, total, nil
}

func (r *GormMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *GormMeetingRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Meeting{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *GormMeetingRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Meeting{})
	return result.RowsAffected, result.Error
}

func (r *GormMeetingRepository) FindSimpleByID(ctx context.Context, id string) (*models.SimpleMeeting, error) {
	var meeting models.SimpleMeeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *GormMeetingRepository) CreateSimple(ctx context.Context, meeting *models.SimpleMeeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *GormMeetingRepository) ListAgreements(ctx context.Context, meetingID string) ([]models.Agreement, error) {
	var agreements []models.Agreement
	err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Order("order_index ASC").Find(&agreements).Error
	return agreements, err
}

func (r *GormMeetingRepository) ListTasks(ctx context.Context, meetingID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order(taskPriorityOrder).
		Scopes(database.DueDateNullsLast).
		Find(&tasks).Error
	return tasks, err
}

func (r *GormMeetingRepository) ListCommitments(ctx context.Context, meetingID string) ([]models.Commitment, error) {
	var commitments []models.Commitment
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Scopes(database.DueDateNullsLast).
		Find(&commitments).Error
	return commitments, err
}

func (r *GormMeetingRepository) ListAttendees(ctx context.Context, meetingID string) ([]models.Attendee, error) {
	var attendees []models.Attendee
	err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Find(&attendees).Error
	return attendees, err
}

func (r *GormMeetingRepository) ListAttachments(ctx context.Context, meetingID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Order("uploaded_at ASC").Find(&attachments).Error
	return attachments, err
}

func (r *GormMeetingRepository) CreateAgreements(ctx context.Context, agreements []models.Agreement) error {
	if len(agreements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&agreements).Error
}

func (r *GormMeetingRepository) CreateTasks(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tasks).Error
}

func (r *GormMeetingRepository) CreateCommitments(ctx context.Context, commitments []models.Commitment) error {
	if len(commitments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&commitments).Error
}

func (r *GormMeetingRepository) CreateAttendees(ctx context.Context, attendees []models.Attendee) error {
	if len(attendees) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&attendees).Error
}

func (r *GormMeetingRepository) DeleteAttachments(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&models.Attachment{}).Error
}

func (r *GormMeetingRepository) DeleteTasks(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&models.Task{}).Error
}

func (r *GormMeetingRepository) DeleteCommitments(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&models.Commitment{}).Error
}

func (r *GormMeetingRepository) DeleteAgreements(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&models.Agreement{}).Error
}

func (r *GormMeetingRepository) DeleteAttendees(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Delete(&models.Attendee{}).Error
}
