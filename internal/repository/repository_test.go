package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/testutil"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type RepositoryTestSuite struct {
	suite.Suite
	db  *gorm.DB
	fx  *testutil.Fixture
	ctx context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.fx = testutil.NewFixture(s.T(), s.db)
	s.ctx = context.Background()
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) TestListTasks_OrdersByPriorityThenDueDate() {
	repo := NewMeetingRepository(s.db)
	meeting := s.fx.Meeting("w1", "u1")

	early := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	s.fx.Task(meeting.ID, "low", models.PriorityLow, &early)
	s.fx.Task(meeting.ID, "high-undated", models.PriorityHigh, nil)
	s.fx.Task(meeting.ID, "high-late", models.PriorityHigh, &late)
	s.fx.Task(meeting.ID, "critical", models.PriorityCritical, &late)
	s.fx.Task(meeting.ID, "high-early", models.PriorityHigh, &early)

	tasks, err := repo.ListTasks(s.ctx, meeting.ID)
	s.Require().NoError(err)

	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.TaskTitle
	}
	s.Equal([]string{"critical", "high-early", "high-late", "high-undated", "low"}, titles)
}

func (s *RepositoryTestSuite) TestListAgreements_OrderIndex() {
	repo := NewMeetingRepository(s.db)
	meeting := s.fx.Meeting("w1", "u1")
	s.fx.Agreement(meeting.ID, "second", 1)
	s.fx.Agreement(meeting.ID, "first", 0)

	agreements, err := repo.ListAgreements(s.ctx, meeting.ID)
	s.Require().NoError(err)
	s.Require().Len(agreements, 2)
	s.Equal("first", agreements[0].AgreementText)
}

func (s *RepositoryTestSuite) TestList_FiltersInactiveAndSearch() {
	repo := NewMeetingRepository(s.db)
	a := s.fx.Meeting("w1", "u1")
	b := s.fx.Meeting("w1", "u1")
	s.fx.Meeting("w2", "u1")
	s.Require().NoError(s.db.Model(&models.Meeting{}).Where("id = ?", b.ID).
		Updates(map[string]interface{}{"is_active": false, "title": "Budget review"}).Error)

	meetings, total, err := repo.List(s.ctx, MeetingFilter{WorkspaceID: "w1"})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(a.ID, meetings[0].ID)

	meetings, total, err = repo.List(s.ctx, MeetingFilter{WorkspaceID: "w1", IncludeInactive: true, Search: "Budget"})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(b.ID, meetings[0].ID)
}

func (s *RepositoryTestSuite) TestList_SearchIgnoresCase() {
	repo := NewMeetingRepository(s.db)
	match := s.fx.Meeting("w1", "u1")
	other := s.fx.Meeting("w1", "u1")
	s.Require().NoError(s.db.Model(&models.Meeting{}).Where("id = ?", match.ID).Update("title", "Reunión de Presupuesto").Error)
	s.Require().NoError(s.db.Model(&models.Meeting{}).Where("id = ?", other.ID).
		Updates(map[string]interface{}{"title": "Planning", "description": "Revisar el PRESUPUESTO anual"}).Error)

	meetings, total, err := repo.List(s.ctx, MeetingFilter{WorkspaceID: "w1", Search: "reunión"})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(match.ID, meetings[0].ID)

	_, total, err = repo.List(s.ctx, MeetingFilter{WorkspaceID: "w1", Search: "presupuesto"})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
}

func (s *RepositoryTestSuite) TestDelete_ReportsRowsAffected() {
	repo := NewMeetingRepository(s.db)
	meeting := s.fx.Meeting("w1", "u1")

	rows, err := repo.Delete(s.ctx, meeting.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), rows)

	rows, err = repo.Delete(s.ctx, meeting.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), rows)
}

func (s *RepositoryTestSuite) TestMarkOverdue_OnlyOpenPastDue() {
	repo := NewTrackableRepository(s.db)
	meeting := s.fx.Meeting("w1", "u1")
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	pastTask := s.fx.Task(meeting.ID, "past", models.PriorityMedium, &past)
	futureTask := s.fx.Task(meeting.ID, "future", models.PriorityMedium, &future)
	doneTask := s.fx.Task(meeting.ID, "done", models.PriorityMedium, &past)
	s.Require().NoError(s.db.Model(&models.Task{}).Where("id = ?", doneTask.ID).Update("status", models.TrackStatusCompleted).Error)

	rows, err := repo.MarkOverdue(s.ctx, models.ItemKindTask, now)
	s.Require().NoError(err)
	s.Equal(int64(1), rows)

	for id, want := range map[string]models.TrackStatus{
		pastTask.ID:   models.TrackStatusOverdue,
		futureTask.ID: models.TrackStatusPending,
		doneTask.ID:   models.TrackStatusCompleted,
	} {
		var reloaded models.Task
		s.Require().NoError(s.db.First(&reloaded, "id = ?", id).Error)
		s.Equal(want, reloaded.Status)
	}
}

func (s *RepositoryTestSuite) TestListItems_WorkspaceAndAssignee() {
	repo := NewTrackableRepository(s.db)
	inWorkspace := s.fx.Meeting("w1", "u1")
	elsewhere := s.fx.Meeting("w2", "u1")

	mine := s.fx.Commitment(inWorkspace.ID, "mine", nil)
	s.fx.Commitment(elsewhere.ID, "other workspace", nil)
	s.Require().NoError(s.db.Model(&models.Commitment{}).Where("meeting_id IN ?", []string{inWorkspace.ID, elsewhere.ID}).
		Update("assigned_to", "user-1").Error)

	commitments, err := repo.ListCommitments(s.ctx, ItemFilter{
		AssignedTo:  testutil.Ptr("user-1"),
		WorkspaceID: testutil.Ptr("w1"),
	})
	s.Require().NoError(err)
	s.Require().Len(commitments, 1)
	s.Equal(mine.ID, commitments[0].ID)
}

func (s *RepositoryTestSuite) TestListItems_HidesArchivedMeetings() {
	repo := NewTrackableRepository(s.db)
	active := s.fx.Meeting("w1", "u1")
	archived := s.fx.Meeting("w2", "u1")
	s.Require().NoError(s.db.Model(&models.Meeting{}).Where("id = ?", archived.ID).Update("is_active", false).Error)

	visible := s.fx.Task(active.ID, "visible", models.PriorityMedium, nil)
	s.fx.Task(archived.ID, "hidden", models.PriorityMedium, nil)
	s.Require().NoError(s.db.Model(&models.Task{}).Where("meeting_id IN ?", []string{active.ID, archived.ID}).
		Update("assigned_to", "user-1").Error)

	tasks, err := repo.ListTasks(s.ctx, ItemFilter{AssignedTo: testutil.Ptr("user-1")})
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(visible.ID, tasks[0].ID)
}

func (s *RepositoryTestSuite) TestFindOwnership() {
	repo := NewTrackableRepository(s.db)
	meeting := s.fx.Meeting("w1", "creator")
	task := s.fx.Task(meeting.ID, "Preparar acta", models.PriorityMedium, nil)
	s.Require().NoError(s.db.Model(task).Update("assigned_to", "user-1").Error)
	commitment := s.fx.Commitment(meeting.ID, "Enviar minuta", nil)

	owner, err := repo.FindOwnership(s.ctx, models.ItemKindTask, task.ID)
	s.Require().NoError(err)
	s.Require().NotNil(owner.AssignedTo)
	s.Equal("user-1", *owner.AssignedTo)
	s.Equal("creator", owner.MeetingCreatedBy)
	s.Equal("w1", owner.WorkspaceID)

	owner, err = repo.FindOwnership(s.ctx, models.ItemKindCommitment, commitment.ID)
	s.Require().NoError(err)
	s.Nil(owner.AssignedTo)

	_, err = repo.FindOwnership(s.ctx, models.ItemKindTask, "missing")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestUpdateFields_UnknownKind() {
	repo := NewTrackableRepository(s.db)
	_, err := repo.UpdateFields(s.ctx, models.ItemKind("agreement"), "x", map[string]interface{}{"status": "x"})
	s.Error(err)
}

func (s *RepositoryTestSuite) TestRoles() {
	repo := NewRoleRepository(s.db)
	s.fx.Role("u1", models.RoleCommunityLeader, testutil.Ptr("c1"), nil)
	inactive := s.fx.Role("u1", models.RoleAdmin, nil, nil)
	s.Require().NoError(s.db.Model(&models.UserRole{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	ok, err := repo.HasCommunityRole(s.ctx, "u1", models.RoleCommunityLeader, "c1")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = repo.HasCommunityRole(s.ctx, "u1", models.RoleCommunityLeader, "c2")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = repo.HasRole(s.ctx, "u1", models.RoleAdmin)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RepositoryTestSuite) TestUpsertGroupSubmission_Idempotent() {
	repo := NewAssignmentRepository(s.db)

	first := &models.GroupAssignmentSubmission{AssignmentID: "a1", GroupID: "g1", UserID: "u1", Content: "v1", Status: models.SubmissionStatusSubmitted}
	s.Require().NoError(repo.UpsertGroupSubmission(s.ctx, first))
	second := &models.GroupAssignmentSubmission{AssignmentID: "a1", GroupID: "g1", UserID: "u1", Content: "v2", Status: models.SubmissionStatusSubmitted}
	s.Require().NoError(repo.UpsertGroupSubmission(s.ctx, second))

	rows, err := repo.ListGroupSubmissions(s.ctx, "a1", "g1")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("v2", rows[0].Content)
}

func (s *RepositoryTestSuite) TestUpdateInstanceGroups() {
	repo := NewAssignmentRepository(s.db)
	instance := &models.AssignmentInstance{TemplateID: "t1", CourseID: "c1", Title: "Essay"}
	s.Require().NoError(repo.CreateInstance(s.ctx, instance))

	groups := []models.Group{{ID: "g1", Name: "Team", Members: []models.GroupMember{{ID: "u1"}}}}
	rows, err := repo.UpdateInstanceGroups(s.ctx, instance.ID, groups)
	s.Require().NoError(err)
	s.Equal(int64(1), rows)

	loaded, err := repo.FindInstance(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Equal(groups, loaded.Groups)
	s.Equal(models.InstanceStatusDraft, loaded.Status)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db := testutil.NewDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	a := &models.Notification{UserID: "u1", Title: "a"}
	b := &models.Notification{UserID: "u1", Title: "b"}
	other := &models.Notification{UserID: "u2", Title: "c"}
	for _, n := range []*models.Notification{a, b, other} {
		require.NoError(t, repo.Create(ctx, n))
	}

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := repo.MarkRead(ctx, "u1", []string{a.ID, other.ID}, at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	unread, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	rows, err = repo.MarkAllRead(ctx, "u1", at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	list, total, err := repo.ListByUser(ctx, "u1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

func TestList_SearchLowersBothSidesOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	search := `LOWER\(title\) LIKE \$\d OR LOWER\(description\) LIKE \$\d`
	mock.ExpectQuery(`SELECT count\(\*\) FROM "community_meetings" WHERE .*` + search).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "community_meetings" WHERE .*` + search).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, total, err := NewMeetingRepository(db).List(context.Background(), MeetingFilter{WorkspaceID: "w1", Search: "Reunión"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
