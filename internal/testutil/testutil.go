// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/community-workspace-api/internal/database"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens an in-memory SQLite database migrated with the given models, or
// with every model when none are given. The pool is pinned to one connection
// because each SQLite memory connection is its own database.
func NewDB(t testing.TB, migrate ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if len(migrate) == 0 {
		migrate = database.AllModels()
	}
	require.NoError(t, db.AutoMigrate(migrate...))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// FixedClock returns a clock that always reports at
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func Ptr[T any](v T) *T {
	return &v
}

// Fixture creates rows with sensible defaults
type Fixture struct {
	t  testing.TB
	db *gorm.DB
}

func NewFixture(t testing.TB, db *gorm.DB) *Fixture {
	return &Fixture{t: t, db: db}
}

func (f *Fixture) create(v interface{}) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(v).Error)
}

// Workspace creates a community (optionally bound to a school) and its workspace
func (f *Fixture) Workspace(schoolID *string) (*models.Community, *models.Workspace) {
	community := &models.Community{Name: "Community", SchoolID: schoolID}
	f.create(community)
	workspace := &models.Workspace{CommunityID: community.ID, Name: "Workspace"}
	f.create(workspace)
	return community, workspace
}

func (f *Fixture) Meeting(workspaceID, createdBy string) *models.Meeting {
	meeting := &models.Meeting{
		WorkspaceID: workspaceID,
		Title:       "Monthly meeting",
		MeetingDate: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		CreatedBy:   createdBy,
		Status:      models.MeetingStatusScheduled,
	}
	f.create(meeting)
	return meeting
}

func (f *Fixture) Role(userID string, role models.RoleType, communityID, schoolID *string) *models.UserRole {
	r := &models.UserRole{UserID: userID, RoleType: role, CommunityID: communityID, SchoolID: schoolID}
	f.create(r)
	return r
}

func (f *Fixture) Task(meetingID string, title string, priority models.Priority, due *time.Time) *models.Task {
	task := &models.Task{
		MeetingID: meetingID,
		TaskTitle: title,
		Priority:  priority,
		Trackable: models.Trackable{DueDate: due, Status: models.TrackStatusPending},
	}
	f.create(task)
	return task
}

func (f *Fixture) Commitment(meetingID string, text string, due *time.Time) *models.Commitment {
	commitment := &models.Commitment{
		MeetingID:      meetingID,
		CommitmentText: text,
		Trackable:      models.Trackable{DueDate: due, Status: models.TrackStatusPending},
	}
	f.create(commitment)
	return commitment
}

func (f *Fixture) Agreement(meetingID, text string, order int) *models.Agreement {
	agreement := &models.Agreement{MeetingID: meetingID, AgreementText: text, OrderIndex: order}
	f.create(agreement)
	return agreement
}

func (f *Fixture) Attendee(meetingID, userID string) *models.Attendee {
	attendee := &models.Attendee{MeetingID: meetingID, UserID: userID}
	f.create(attendee)
	return attendee
}

func (f *Fixture) Attachment(meetingID, path string) *models.Attachment {
	attachment := &models.Attachment{
		MeetingID:  meetingID,
		Filename:   path,
		FilePath:   path,
		FileSize:   128,
		FileType:   "application/pdf",
		UploadedAt: time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC),
	}
	f.create(attachment)
	return attachment
}

func (f *Fixture) Profile(id, first, last, email string) *models.Profile {
	profile := &models.Profile{ID: id, FirstName: first, LastName: last, Email: email}
	f.create(profile)
	return profile
}

// Count returns the number of rows of model matching the condition
func (f *Fixture) Count(model interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var count int64
	require.NoError(f.t, f.db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}
