package services

import (
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/testutil"
)

func (s *ServiceTestSuite) TestCanViewMeeting() {
	schoolID := "school-1"
	community, workspace := s.fx.Workspace(&schoolID)
	meeting := s.fx.Meeting(workspace.ID, "creator")
	s.fx.Attendee(meeting.ID, "guest")
	s.fx.Role("leader", models.RoleCommunityLeader, &community.ID, nil)
	s.fx.Role("consultant", models.RoleConsultant, nil, &schoolID)
	s.fx.Role("elsewhere", models.RoleConsultant, nil, testutil.Ptr("school-2"))

	details, err := s.meetings.GetMeetingWithDetails(s.ctx, meeting.ID)
	s.Require().NoError(err)

	for user, want := range map[string]bool{
		"creator":    true,
		"guest":      true,
		"leader":     true,
		"consultant": true,
		"elsewhere":  false,
		"stranger":   false,
		"":           false,
	} {
		s.Equal(want, s.meetings.CanViewMeeting(s.ctx, user, details), user)
	}
}

func (s *ServiceTestSuite) TestAuthorizeUpdate() {
	_, workspace := s.fx.Workspace(nil)
	meeting := s.fx.Meeting(workspace.ID, "creator")
	task := s.fx.Task(meeting.ID, "Preparar acta", models.PriorityHigh, nil)
	s.Require().NoError(s.db.Model(task).Update("assigned_to", "assignee").Error)
	commitment := s.fx.Commitment(meeting.ID, "Enviar minuta", nil)
	s.fx.Role("admin", models.RoleAdmin, nil, nil)

	for _, user := range []string{"assignee", "creator", "admin"} {
		s.NoError(s.status.AuthorizeUpdate(s.ctx, user, models.ItemKindTask, task.ID), user)
	}
	s.ErrorIs(s.status.AuthorizeUpdate(s.ctx, "stranger", models.ItemKindTask, task.ID), ErrInsufficientPermissions)
	s.ErrorIs(s.status.AuthorizeUpdate(s.ctx, "assignee", models.ItemKindCommitment, commitment.ID), ErrInsufficientPermissions)
	s.NoError(s.status.AuthorizeUpdate(s.ctx, "creator", models.ItemKindCommitment, commitment.ID))
	s.ErrorIs(s.status.AuthorizeUpdate(s.ctx, "creator", models.ItemKindTask, "missing"), ErrItemNotFound)
}

func (s *ServiceTestSuite) TestAuthorizeInstanceManager() {
	schoolID := "school-1"
	community, _ := s.fx.Workspace(&schoolID)
	s.fx.Role("teacher", models.RoleTeacher, nil, &schoolID)
	s.fx.Role("leader", models.RoleCommunityLeader, &community.ID, nil)
	s.fx.Role("admin", models.RoleAdmin, nil, nil)

	instance := s.createInstance(pair())
	s.Require().NoError(s.db.Model(&models.AssignmentInstance{}).Where("id = ?", instance.ID).
		Updates(map[string]interface{}{"school_id": schoolID, "community_id": community.ID}).Error)

	for _, user := range []string{"instructor", "teacher", "leader", "admin"} {
		got, err := s.assignments.AuthorizeInstanceManager(s.ctx, user, instance.ID)
		s.Require().NoError(err, user)
		s.Equal(instance.ID, got.ID)
	}
	for _, user := range []string{"u1", "u3", ""} {
		_, err := s.assignments.AuthorizeInstanceManager(s.ctx, user, instance.ID)
		s.ErrorIs(err, ErrInsufficientPermissions, user)
	}
	_, err := s.assignments.AuthorizeInstanceManager(s.ctx, "admin", "missing")
	s.ErrorIs(err, ErrInstanceNotFound)
}

func (s *ServiceTestSuite) TestAuthorizeAuthors() {
	schoolID := "school-1"
	community, _ := s.fx.Workspace(&schoolID)
	s.fx.Role("teacher", models.RoleTeacher, nil, &schoolID)
	s.fx.Role("leader", models.RoleCommunityLeader, &community.ID, nil)
	s.fx.Role("admin", models.RoleAdmin, nil, nil)

	s.NoError(s.assignments.AuthorizeTemplateAuthor(s.ctx, "teacher"))
	s.NoError(s.assignments.AuthorizeTemplateAuthor(s.ctx, "admin"))
	s.ErrorIs(s.assignments.AuthorizeTemplateAuthor(s.ctx, "u1"), ErrInsufficientPermissions)

	s.NoError(s.assignments.AuthorizeInstanceAuthor(s.ctx, "teacher", &schoolID, nil))
	s.NoError(s.assignments.AuthorizeInstanceAuthor(s.ctx, "leader", nil, &community.ID))
	s.NoError(s.assignments.AuthorizeInstanceAuthor(s.ctx, "admin", nil, nil))
	s.ErrorIs(s.assignments.AuthorizeInstanceAuthor(s.ctx, "teacher", testutil.Ptr("school-2"), nil), ErrInsufficientPermissions)
	s.ErrorIs(s.assignments.AuthorizeInstanceAuthor(s.ctx, "teacher", nil, nil), ErrInsufficientPermissions)
	s.ErrorIs(s.assignments.AuthorizeInstanceAuthor(s.ctx, "leader", &schoolID, nil), ErrInsufficientPermissions)
}

func (s *ServiceTestSuite) TestCanNotify() {
	s.fx.Role("admin", models.RoleAdmin, nil, nil)

	s.True(s.authz.CanNotify(s.ctx, "u1", "u1"))
	s.True(s.authz.CanNotify(s.ctx, "admin", "u1"))
	s.False(s.authz.CanNotify(s.ctx, "u1", "u2"))
	s.False(s.authz.CanNotify(s.ctx, "", ""))
}
