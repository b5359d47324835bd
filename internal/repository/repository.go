package repository

import (
	"context"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
)

// MeetingRepository defines data access for meetings and their child rows.
// Every method is an independent statement; callers sequence them.
type MeetingRepository interface {
	// FindByID finds a meeting by ID, active or not
	FindByID(ctx context.Context, id string) (*models.Meeting, error)

	// List retrieves meetings with filtering, sorting and pagination
	List(ctx context.Context, filter MeetingFilter) ([]models.Meeting, int64, error)

	// Create inserts a meeting row
	Create(ctx context.Context, meeting *models.Meeting) error

	// UpdateFields applies a column update and reports the affected row count
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error)

	// Delete hard deletes the meeting row and reports the affected row count
	Delete(ctx context.Context, id string) (int64, error)

	// FindSimpleByID finds a meeting in the single-table fallback store
	FindSimpleByID(ctx context.Context, id string) (*models.SimpleMeeting, error)

	// CreateSimple inserts a meeting into the single-table fallback store
	CreateSimple(ctx context.Context, meeting *models.SimpleMeeting) error

	ListAgreements(ctx context.Context, meetingID string) ([]models.Agreement, error)
	ListTasks(ctx context.Context, meetingID string) ([]models.Task, error)
	ListCommitments(ctx context.Context, meetingID string) ([]models.Commitment, error)
	ListAttendees(ctx context.Context, meetingID string) ([]models.Attendee, error)
	ListAttachments(ctx context.Context, meetingID string) ([]models.Attachment, error)

	CreateAgreements(ctx context.Context, agreements []models.Agreement) error
	CreateTasks(ctx context.Context, tasks []models.Task) error
	CreateCommitments(ctx context.Context, commitments []models.Commitment) error
	CreateAttendees(ctx context.Context, attendees []models.Attendee) error

	DeleteAttachments(ctx context.Context, meetingID string) error
	DeleteTasks(ctx context.Context, meetingID string) error
	DeleteCommitments(ctx context.Context, meetingID string) error
	DeleteAgreements(ctx context.Context, meetingID string) error
	DeleteAttendees(ctx context.Context, meetingID string) error
}

// MeetingFilter holds filtering options for listing meetings
type MeetingFilter struct {
	WorkspaceID     string
	Statuses        []models.MeetingStatus
	DateFrom        *time.Time
	DateTo          *time.Time
	Search          string
	SortBy          string
	SortDesc        bool
	IncludeInactive bool
	Page            int
	PageSize        int
}

// TrackableRepository defines data access shared by tasks and commitments
type TrackableRepository interface {
	// UpdateFields updates one item of the given kind and reports the affected row count
	UpdateFields(ctx context.Context, kind models.ItemKind, id string, fields map[string]interface{}) (int64, error)

	// MarkOverdue sets vencido on open items whose due date has passed
	MarkOverdue(ctx context.Context, kind models.ItemKind, now time.Time) (int64, error)

	// FindOwnership resolves who an item belongs to through its meeting
	FindOwnership(ctx context.Context, kind models.ItemKind, id string) (*ItemOwnership, error)

	ListTasks(ctx context.Context, filter ItemFilter) ([]models.Task, error)
	ListCommitments(ctx context.Context, filter ItemFilter) ([]models.Commitment, error)
}

// ItemOwnership is the assignee of an item and the meeting it hangs from
type ItemOwnership struct {
	AssignedTo       *string
	MeetingCreatedBy string
	WorkspaceID      string
}

// ItemFilter holds filtering options for listing trackable items
type ItemFilter struct {
	AssignedTo      *string
	WorkspaceID     *string
	DueBefore       *time.Time
	ExcludeTerminal bool
}

// CommunityRepository defines lookups over workspaces and their communities
type CommunityRepository interface {
	FindWorkspace(ctx context.Context, id string) (*models.Workspace, error)
	FindCommunity(ctx context.Context, id string) (*models.Community, error)
}

// RoleRepository answers role membership questions. Only active roles count.
type RoleRepository interface {
	// HasRole reports whether the user holds the role in any scope
	HasRole(ctx context.Context, userID string, role models.RoleType) (bool, error)

	// HasCommunityRole reports whether the user holds the role scoped to the community
	HasCommunityRole(ctx context.Context, userID string, role models.RoleType, communityID string) (bool, error)

	// HasSchoolRole reports whether the user holds the role scoped to the school
	HasSchoolRole(ctx context.Context, userID string, role models.RoleType, schoolID string) (bool, error)
}

// ProfileRepository defines data access for user profiles
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	UpdateAvatar(ctx context.Context, id string, avatarURL *string) (int64, error)
}

// AssignmentRepository defines data access for templates, instances and their submissions
type AssignmentRepository interface {
	CreateTemplate(ctx context.Context, template *models.AssignmentTemplate) error
	FindTemplate(ctx context.Context, id string) (*models.AssignmentTemplate, error)

	CreateInstance(ctx context.Context, instance *models.AssignmentInstance) error
	FindInstance(ctx context.Context, id string) (*models.AssignmentInstance, error)
	UpdateInstance(ctx context.Context, id string, fields map[string]interface{}) (int64, error)
	UpdateInstanceGroups(ctx context.Context, id string, groups []models.Group) (int64, error)

	// UpsertSubmission writes a submission keyed on (instance, user, group)
	UpsertSubmission(ctx context.Context, submission *models.AssignmentSubmission) error
	FindSubmission(ctx context.Context, instanceID, userID, groupID string) (*models.AssignmentSubmission, error)

	// UpsertGroupSubmission writes one member row keyed on (assignment, group, user)
	UpsertGroupSubmission(ctx context.Context, submission *models.GroupAssignmentSubmission) error
	ListGroupSubmissions(ctx context.Context, assignmentID, groupID string) ([]models.GroupAssignmentSubmission, error)
	UpdateGroupSubmission(ctx context.Context, assignmentID, groupID, userID string, fields map[string]interface{}) (int64, error)
}

// LessonAssignmentRepository defines data access for per-lesson group assignments
type LessonAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.LessonAssignment) error
	FindByID(ctx context.Context, id string) (*models.LessonAssignment, error)
	UpdateGroups(ctx context.Context, id string, groups []models.LessonGroup) (int64, error)
}

// NotificationRepository defines data access for in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, ids []string, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

// AuditRepository persists meeting audit entries
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	ListByMeeting(ctx context.Context, meetingID string) ([]models.AuditEntry, error)
}
