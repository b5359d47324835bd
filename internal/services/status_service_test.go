package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"github.com/yukikurage/community-workspace-api/internal/testutil"
)

func (s *ServiceTestSuite) TestUpdateStatus_CompletedForcesFullProgress() {
	meeting := s.fx.Meeting("w1", "u1")

	for _, progress := range []int{0, 45, 99, 100} {
		task := s.fx.Task(meeting.ID, "task", models.PriorityMedium, nil)

		result := s.status.UpdateStatus(s.ctx, UpdateStatusInput{
			Kind:               models.ItemKindTask,
			ItemID:             task.ID,
			Status:             models.TrackStatusCompleted,
			ProgressPercentage: progress,
		})
		s.Require().True(result.Success, result.Error)

		stored := s.reloadTask(task.ID)
		s.Equal(models.TrackStatusCompleted, stored.Status)
		s.Equal(100, stored.ProgressPercentage, "progress %d", progress)
		s.Require().NotNil(stored.CompletedAt)
		s.True(stored.CompletedAt.Equal(s.now))
	}
}

func (s *ServiceTestSuite) TestUpdateStatus_FullProgressForcesCompleted() {
	meeting := s.fx.Meeting("w1", "u1")
	commitment := s.fx.Commitment(meeting.ID, "share the rubric", nil)

	result := s.status.UpdateStatus(s.ctx, UpdateStatusInput{
		Kind:               models.ItemKindCommitment,
		ItemID:             commitment.ID,
		Status:             models.TrackStatusInProgress,
		ProgressPercentage: 100,
	})
	s.Require().True(result.Success, result.Error)

	var stored models.Commitment
	s.Require().NoError(s.db.Where("id = ?", commitment.ID).First(&stored).Error)
	s.Equal(models.TrackStatusCompleted, stored.Status)
	s.NotNil(stored.CompletedAt)
}

func (s *ServiceTestSuite) TestUpdateStatus_ReopeningClearsCompletedAt() {
	meeting := s.fx.Meeting("w1", "u1")
	task := s.fx.Task(meeting.ID, "task", models.PriorityMedium, nil)

	s.Require().True(s.status.UpdateStatus(s.ctx, UpdateStatusInput{
		Kind: models.ItemKindTask, ItemID: task.ID, Status: models.TrackStatusCompleted,
	}).Success)

	notes := "<p>reopened</p><script>alert(1)</script>"
	result := s.status.UpdateStatus(s.ctx, UpdateStatusInput{
		Kind:               models.ItemKindTask,
		ItemID:             task.ID,
		Status:             models.TrackStatusInProgress,
		ProgressPercentage: 40,
		Notes:              &notes,
	})
	s.Require().True(result.Success, result.Error)

	stored := s.reloadTask(task.ID)
	s.Equal(models.TrackStatusInProgress, stored.Status)
	s.Equal(40, stored.ProgressPercentage)
	s.Nil(stored.CompletedAt)
	s.Require().NotNil(stored.Notes)
	s.Equal("<p>reopened</p>", *stored.Notes)
}

func (s *ServiceTestSuite) TestUpdateStatus_RejectsInvalidInput() {
	meeting := s.fx.Meeting("w1", "u1")
	task := s.fx.Task(meeting.ID, "task", models.PriorityMedium, nil)

	cases := []struct {
		name  string
		input UpdateStatusInput
	}{
		{"unknown kind", UpdateStatusInput{Kind: "agreement", ItemID: task.ID, Status: models.TrackStatusPending}},
		{"missing id", UpdateStatusInput{Kind: models.ItemKindTask, Status: models.TrackStatusPending}},
		{"unknown status", UpdateStatusInput{Kind: models.ItemKindTask, ItemID: task.ID, Status: "done"}},
		{"negative progress", UpdateStatusInput{Kind: models.ItemKindTask, ItemID: task.ID, Status: models.TrackStatusPending, ProgressPercentage: -1}},
		{"progress over 100", UpdateStatusInput{Kind: models.ItemKindTask, ItemID: task.ID, Status: models.TrackStatusPending, ProgressPercentage: 101}},
	}
	for _, tc := range cases {
		result := s.status.UpdateStatus(s.ctx, tc.input)
		s.False(result.Success, tc.name)
		s.NotEmpty(result.Error, tc.name)
	}

	s.Equal(models.TrackStatusPending, s.reloadTask(task.ID).Status)
}

func (s *ServiceTestSuite) TestUpdateStatus_MissingItemIsNotSuccess() {
	result := s.status.UpdateStatus(s.ctx, UpdateStatusInput{
		Kind:   models.ItemKindTask,
		ItemID: "missing",
		Status: models.TrackStatusInProgress,
	})
	s.False(result.Success)
	s.Contains(result.Error, "not found or insufficient permissions")
}

func (s *ServiceTestSuite) TestOverdueIsComputedAtReadTime() {
	meeting := s.fx.Meeting("w1", "u1")
	task := s.fx.Task(meeting.ID, "late task", models.PriorityHigh, s.days(-2))
	s.assign(task, "u2")

	items, err := s.status.ListUserItems(s.ctx, "u2", nil)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.True(items[0].IsOverdue)
	s.Equal(models.TrackStatusPending, items[0].Item.Tracking().Status)
	s.Require().NotNil(items[0].DaysUntilDue)
	s.Equal(-2, *items[0].DaysUntilDue)

	s.Equal(models.TrackStatusPending, s.reloadTask(task.ID).Status)

	update, err := s.status.UpdateOverdueStatuses(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), update.Tasks)
	s.Equal(int64(0), update.Commitments)
	s.Equal(models.TrackStatusOverdue, s.reloadTask(task.ID).Status)
}

func (s *ServiceTestSuite) TestUpdateOverdueStatuses_SkipsTerminalAndFutureItems() {
	meeting := s.fx.Meeting("w1", "u1")
	done := s.fx.Task(meeting.ID, "done", models.PriorityHigh, s.days(-5))
	s.Require().True(s.status.UpdateStatus(s.ctx, UpdateStatusInput{
		Kind: models.ItemKindTask, ItemID: done.ID, Status: models.TrackStatusCompleted,
	}).Success)
	future := s.fx.Task(meeting.ID, "future", models.PriorityHigh, s.days(3))
	late := s.fx.Commitment(meeting.ID, "late", s.days(-1))

	update, err := s.status.UpdateOverdueStatuses(s.ctx)
	s.Require().NoError(err)
	s.Equal(OverdueUpdate{Tasks: 0, Commitments: 1}, update)

	s.Equal(models.TrackStatusCompleted, s.reloadTask(done.ID).Status)
	s.Equal(models.TrackStatusPending, s.reloadTask(future.ID).Status)
	s.Equal(int64(1), s.fx.Count(&models.Commitment{}, "id = ? AND status = ?", late.ID, models.TrackStatusOverdue))
}

func (s *ServiceTestSuite) TestListUserItems_MergesKindsByDueDate() {
	_, workspace := s.fx.Workspace(nil)
	meeting := s.fx.Meeting(workspace.ID, "u1")
	other := s.fx.Meeting("other-workspace", "u1")

	undated := s.fx.Task(meeting.ID, "undated", models.PriorityLow, nil)
	later := s.fx.Task(meeting.ID, "later", models.PriorityLow, s.days(10))
	sooner := s.fx.Commitment(meeting.ID, "sooner", s.days(1))
	elsewhere := s.fx.Task(other.ID, "elsewhere", models.PriorityLow, s.days(2))
	for _, m := range []interface{}{undated, later, sooner, elsewhere} {
		s.assign(m, "u2")
	}

	items, err := s.status.ListUserItems(s.ctx, "u2", &workspace.ID)
	s.Require().NoError(err)

	headings := make([]string, len(items))
	for i, item := range items {
		headings[i] = item.Item.Heading()
	}
	s.Equal([]string{"sooner", "later", "undated"}, headings)
	s.Equal(models.ItemKindCommitment, items[0].Item.Kind())
	s.Nil(items[2].DaysUntilDue)
	s.False(items[0].IsOverdue)
}

func (s *ServiceTestSuite) TestOverdueItems_ExcludesTerminal() {
	meeting := s.fx.Meeting("w1", "u1")
	s.fx.Task(meeting.ID, "late", models.PriorityHigh, s.days(-1))
	cancelled := s.fx.Task(meeting.ID, "cancelled", models.PriorityHigh, s.days(-1))
	s.Require().True(s.status.UpdateStatus(s.ctx, UpdateStatusInput{
		Kind: models.ItemKindTask, ItemID: cancelled.ID, Status: models.TrackStatusCancelled,
	}).Success)
	s.fx.Task(meeting.ID, "future", models.PriorityHigh, s.days(1))

	items, err := s.status.OverdueItems(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("late", items[0].Item.Heading())
	s.True(items[0].IsOverdue)
}

type failingTrackables struct {
	repository.TrackableRepository
	failKind models.ItemKind
}

func (f failingTrackables) MarkOverdue(ctx context.Context, kind models.ItemKind, now time.Time) (int64, error) {
	if kind == f.failKind {
		return 0, errors.New("connection reset")
	}
	return 2, nil
}

func TestUpdateOverdueStatuses_ReportsPartialFailure(t *testing.T) {
	svc := NewStatusService(failingTrackables{failKind: models.ItemKindTask}, nil, nil)

	update, err := svc.UpdateOverdueStatuses(context.Background())
	assert.ErrorContains(t, err, "failed to mark overdue tasks")
	assert.Equal(t, int64(2), update.Commitments)
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name   string
		due    *time.Time
		status models.TrackStatus
		want   bool
	}{
		{"past pending", &past, models.TrackStatusPending, true},
		{"past in progress", &past, models.TrackStatusInProgress, true},
		{"past already overdue", &past, models.TrackStatusOverdue, true},
		{"past completed", &past, models.TrackStatusCompleted, false},
		{"past cancelled", &past, models.TrackStatusCancelled, false},
		{"future pending", &future, models.TrackStatusPending, false},
		{"no due date", nil, models.TrackStatusPending, false},
		{"due exactly now", &now, models.TrackStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverdue(tt.due, tt.status, now))
		})
	}
}

func TestDaysUntilDue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, DaysUntilDue(nil, now))
	assert.Equal(t, testutil.Ptr(1), DaysUntilDue(testutil.Ptr(now.Add(2*time.Hour)), now))
	assert.Equal(t, testutil.Ptr(2), DaysUntilDue(testutil.Ptr(now.Add(36*time.Hour)), now))
	assert.Equal(t, testutil.Ptr(0), DaysUntilDue(testutil.Ptr(now), now))
	assert.Equal(t, testutil.Ptr(-1), DaysUntilDue(testutil.Ptr(now.Add(-25*time.Hour)), now))
}
