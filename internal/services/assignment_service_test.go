package services

import (
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/testutil"
)

func (s *ServiceTestSuite) createInstance(groups []models.Group) *models.AssignmentInstance {
	template, err := s.assignments.CreateTemplate(s.ctx, CreateTemplateInput{
		LessonID:     "lesson-1",
		Title:        "Proyecto de aula",
		Description:  "Describe el proyecto",
		Instructions: "Trabajen en grupo",
		MinGroupSize: 2,
		MaxGroupSize: 4,
		CreatedBy:    "instructor",
	})
	s.Require().NoError(err)

	instance, err := s.assignments.CreateAssignmentInstance(s.ctx, CreateInstanceInput{
		TemplateID: template.ID,
		CourseID:   "course-1",
		Groups:     groups,
		CreatedBy:  "instructor",
	})
	s.Require().NoError(err)
	return instance
}

func pair() []models.Group {
	return []models.Group{
		{ID: "g1", Name: "Grupo 1", Members: []models.GroupMember{
			{ID: "u1", Email: "u1@example.com", Name: "Uno"},
			{ID: "u2", Email: "u2@example.com", Name: "Dos"},
		}},
		{ID: "g2", Name: "Grupo 2", Members: []models.GroupMember{{ID: "u3"}}},
	}
}

func (s *ServiceTestSuite) TestCreateAssignmentInstance_CopiesTemplateContent() {
	instance := s.createInstance(nil)

	s.Equal("Proyecto de aula", instance.Title)
	s.Equal("Describe el proyecto", instance.Description)
	s.Equal("Trabajen en grupo", instance.Instructions)
	s.Equal(models.InstanceStatusDraft, instance.Status)
	s.NotNil(instance.Groups)

	template, err := s.assignments.GetTemplate(s.ctx, instance.TemplateID)
	s.Require().NoError(err)
	s.Equal("group", template.AssignmentType)
}

func (s *ServiceTestSuite) TestCreateAssignmentInstance_Validation() {
	template, err := s.assignments.CreateTemplate(s.ctx, CreateTemplateInput{LessonID: "l1", Title: "t"})
	s.Require().NoError(err)
	s.Equal("individual", template.AssignmentType)

	_, err = s.assignments.CreateTemplate(s.ctx, CreateTemplateInput{LessonID: "l1", Title: "t", MinGroupSize: 3, MaxGroupSize: 2})
	s.ErrorIs(err, ErrInvalidGroupSize)

	_, err = s.assignments.CreateAssignmentInstance(s.ctx, CreateInstanceInput{TemplateID: "missing", CourseID: "c1"})
	s.ErrorIs(err, ErrTemplateNotFound)

	start := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	due := start.AddDate(0, 0, -1)
	_, err = s.assignments.CreateAssignmentInstance(s.ctx, CreateInstanceInput{
		TemplateID: template.ID, CourseID: "c1", StartDate: &start, DueDate: &due,
	})
	s.ErrorIs(err, ErrInvalidDateWindow)

	_, err = s.assignments.CreateAssignmentInstance(s.ctx, CreateInstanceInput{
		TemplateID: template.ID, CourseID: "c1",
		Groups: []models.Group{
			{Name: "a", Members: []models.GroupMember{{ID: "u1"}}},
			{Name: "b", Members: []models.GroupMember{{ID: "u1"}}},
		},
	})
	s.ErrorIs(err, ErrDuplicateGroupMembership)
}

func (s *ServiceTestSuite) TestUpdateAssignmentGroups() {
	instance := s.createInstance(nil)

	updated, err := s.assignments.UpdateAssignmentGroups(s.ctx, instance.ID, []models.Group{
		{Name: " Nuevo ", Members: []models.GroupMember{{ID: "u5"}}},
	})
	s.Require().NoError(err)
	s.Require().Len(updated.Groups, 1)
	s.NotEmpty(updated.Groups[0].ID)
	s.Equal("Nuevo", updated.Groups[0].Name)

	_, err = s.assignments.UpdateAssignmentGroups(s.ctx, "missing", pair())
	s.ErrorIs(err, ErrInstanceNotFound)
}

func (s *ServiceTestSuite) TestInstanceStatusTransitionsAreUnrestricted() {
	instance := s.createInstance(nil)

	archived, err := s.assignments.ArchiveAssignmentInstance(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Equal(models.InstanceStatusArchived, archived.Status)

	active, err := s.assignments.ActivateAssignmentInstance(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Equal(models.InstanceStatusActive, active.Status)

	draft, err := s.assignments.SetInstanceStatus(s.ctx, instance.ID, models.InstanceStatusDraft)
	s.Require().NoError(err)
	s.Equal(models.InstanceStatusDraft, draft.Status)

	_, err = s.assignments.SetInstanceStatus(s.ctx, instance.ID, "published")
	s.ErrorIs(err, ErrInvalidInstanceStatus)

	_, err = s.assignments.ActivateAssignmentInstance(s.ctx, "missing")
	s.ErrorIs(err, ErrInstanceNotFound)
}

func (s *ServiceTestSuite) TestGetUserGroupInInstance() {
	instance := s.createInstance(pair())

	group, err := s.assignments.GetUserGroupInInstance(s.ctx, instance.ID, "u2")
	s.Require().NoError(err)
	s.Require().NotNil(group)
	s.Equal("g1", group.ID)

	group, err = s.assignments.GetUserGroupInInstance(s.ctx, instance.ID, "outsider")
	s.Require().NoError(err)
	s.Nil(group)

	_, err = s.assignments.GetUserGroupInInstance(s.ctx, "missing", "u2")
	s.ErrorIs(err, ErrInstanceNotFound)
}

func (s *ServiceTestSuite) TestSubmitAssignment_UpsertsOnInstanceUserGroup() {
	instance := s.createInstance(pair())

	first, err := s.assignments.SubmitAssignment(s.ctx, SubmitAssignmentInput{
		InstanceID: instance.ID, UserID: "u1", GroupID: "g1", Content: "borrador", Status: models.SubmissionStatusDraft,
	})
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusDraft, first.Status)
	s.Nil(first.SubmittedAt)

	second, err := s.assignments.SubmitAssignment(s.ctx, SubmitAssignmentInput{
		InstanceID: instance.ID, UserID: "u1", GroupID: "g1", Content: "final",
	})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal("final", second.Content)
	s.Equal(models.SubmissionStatusSubmitted, second.Status)
	s.NotNil(second.SubmittedAt)

	_, err = s.assignments.SubmitAssignment(s.ctx, SubmitAssignmentInput{InstanceID: instance.ID, UserID: "u1", Content: "individual"})
	s.Require().NoError(err)

	s.Equal(int64(2), s.fx.Count(&models.AssignmentSubmission{}, "instance_id = ? AND user_id = ?", instance.ID, "u1"))

	_, err = s.assignments.SubmitAssignment(s.ctx, SubmitAssignmentInput{InstanceID: instance.ID, UserID: "u3", GroupID: "g1"})
	s.ErrorIs(err, ErrNotGroupMember)
}

func (s *ServiceTestSuite) TestSubmitGroupAssignment_FansOutOneRowPerMember() {
	instance := s.createInstance(pair())
	fileURL := "https://files.example.com/proyecto.pdf"

	result, err := s.assignments.SubmitGroupAssignment(s.ctx, instance.ID, "g1", GroupSubmissionPayload{
		SubmittedBy: "u1",
		Content:     "Nuestro proyecto",
		FileURL:     &fileURL,
	})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"u1", "u2"}, result.Submitted)
	s.Empty(result.Errors)

	var rows []models.GroupAssignmentSubmission
	s.Require().NoError(s.db.Where("assignment_id = ? AND group_id = ?", instance.ID, "g1").Find(&rows).Error)
	s.Require().Len(rows, 2)
	s.NotEqual(rows[0].UserID, rows[1].UserID)
	for _, row := range rows {
		s.Equal("Nuestro proyecto", row.Content)
		s.Require().NotNil(row.FileURL)
		s.Equal(fileURL, *row.FileURL)
		s.Equal(models.SubmissionStatusSubmitted, row.Status)
		s.Equal("g1", row.GroupID)
	}

	_, err = s.assignments.SubmitGroupAssignment(s.ctx, instance.ID, "g1", GroupSubmissionPayload{SubmittedBy: "u2", Content: "v2"})
	s.Require().NoError(err)
	s.Equal(int64(2), s.fx.Count(&models.GroupAssignmentSubmission{}, "assignment_id = ? AND group_id = ?", instance.ID, "g1"))
	s.Equal(int64(2), s.fx.Count(&models.GroupAssignmentSubmission{}, "content = ?", "v2"))
}

func (s *ServiceTestSuite) TestSubmitGroupAssignment_Rejections() {
	instance := s.createInstance(pair())

	_, err := s.assignments.SubmitGroupAssignment(s.ctx, instance.ID, "g1", GroupSubmissionPayload{SubmittedBy: "u3"})
	s.ErrorIs(err, ErrNotGroupMember)

	_, err = s.assignments.SubmitGroupAssignment(s.ctx, instance.ID, "g9", GroupSubmissionPayload{SubmittedBy: "u1"})
	s.ErrorIs(err, ErrGroupNotFound)

	_, err = s.assignments.SubmitGroupAssignment(s.ctx, "missing", "g1", GroupSubmissionPayload{SubmittedBy: "u1"})
	s.ErrorIs(err, ErrInstanceNotFound)

	s.Equal(int64(0), s.fx.Count(&models.GroupAssignmentSubmission{}, "1 = 1"))
}

func (s *ServiceTestSuite) TestGradeGroupSubmission_UpdatesEveryMemberRow() {
	instance := s.createInstance(pair())

	_, err := s.assignments.GradeGroupSubmission(s.ctx, instance.ID, "g1", GradeInput{Grade: 6.5, GradedBy: "instructor"})
	s.ErrorIs(err, ErrGroupSubmissionNotFound)

	_, err = s.assignments.SubmitGroupAssignment(s.ctx, instance.ID, "g1", GroupSubmissionPayload{SubmittedBy: "u1", Content: "x"})
	s.Require().NoError(err)

	result, err := s.assignments.GradeGroupSubmission(s.ctx, instance.ID, "g1", GradeInput{
		Grade:    6.5,
		Feedback: testutil.Ptr("Muy bien"),
		GradedBy: "instructor",
	})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"u1", "u2"}, result.Graded)
	s.Empty(result.Errors)

	s.Equal(int64(2), s.fx.Count(&models.GroupAssignmentSubmission{},
		"assignment_id = ? AND group_id = ? AND status = ? AND grade = ? AND graded_by = ?",
		instance.ID, "g1", models.SubmissionStatusGraded, 6.5, "instructor"))

	status, err := s.assignments.GroupSubmissionStatus(s.ctx, instance.ID, "g1")
	s.Require().NoError(err)
	s.Require().NotNil(status)
	s.Equal(models.SubmissionStatusGraded, status.Status)
	s.Require().NotNil(status.Grade)
	s.Equal(6.5, *status.Grade)

	status, err = s.assignments.GroupSubmissionStatus(s.ctx, instance.ID, "g2")
	s.Require().NoError(err)
	s.Nil(status)
}

func (s *ServiceTestSuite) TestGroupSubmissionStatus_IgnoresRowsOfRemovedMembers() {
	instance := s.createInstance(pair())

	_, err := s.assignments.SubmitGroupAssignment(s.ctx, instance.ID, "g1", GroupSubmissionPayload{SubmittedBy: "u1", Content: "x"})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.GroupAssignmentSubmission{}).
		Where("assignment_id = ? AND user_id = ?", instance.ID, "u1").
		Updates(map[string]interface{}{"status": models.SubmissionStatusGraded, "content": "old"}).Error)

	groups := pair()
	groups[0].Members = groups[0].Members[1:]
	_, err = s.assignments.UpdateAssignmentGroups(s.ctx, instance.ID, groups)
	s.Require().NoError(err)

	status, err := s.assignments.GroupSubmissionStatus(s.ctx, instance.ID, "g1")
	s.Require().NoError(err)
	s.Require().NotNil(status)
	s.Equal(models.SubmissionStatusSubmitted, status.Status)
	s.Equal("x", status.Content)

	groups[0].Members = []models.GroupMember{{ID: "u4"}}
	_, err = s.assignments.UpdateAssignmentGroups(s.ctx, instance.ID, groups)
	s.Require().NoError(err)

	status, err = s.assignments.GroupSubmissionStatus(s.ctx, instance.ID, "g1")
	s.Require().NoError(err)
	s.Nil(status)
}

func (s *ServiceTestSuite) createLessonAssignment() *models.LessonAssignment {
	groups := pair()
	assignment := &models.LessonAssignment{
		LessonID: "lesson-1",
		Title:    "Bloque 3",
		GroupAssignments: []models.LessonGroup{
			{Group: groups[0]},
			{Group: groups[1]},
		},
	}
	s.Require().NoError(s.db.Create(assignment).Error)
	return assignment
}

func (s *ServiceTestSuite) TestGroupMembership_LessonSource() {
	lesson := s.createLessonAssignment()
	ref := AssignmentRef{Source: SourceLesson, ID: lesson.ID}

	group, err := s.groups.ResolveGroupFor(s.ctx, "u3", ref)
	s.Require().NoError(err)
	s.Require().NotNil(group)
	s.Equal("g2", group.ID)

	status, err := s.groups.GroupStatus(s.ctx, ref, "g1")
	s.Require().NoError(err)
	s.Nil(status)

	result, err := s.groups.SubmitForGroup(s.ctx, ref, "g1", GroupSubmissionPayload{SubmittedBy: "u2", Content: "<p>Entrega</p>"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"u1", "u2"}, result.Submitted)

	var stored models.LessonAssignment
	s.Require().NoError(s.db.Where("id = ?", lesson.ID).First(&stored).Error)
	s.Require().Len(stored.GroupAssignments, 2)
	s.Require().NotNil(stored.GroupAssignments[0].Submission)
	s.Equal("<p>Entrega</p>", stored.GroupAssignments[0].Submission.Content)
	s.Equal("u2", stored.GroupAssignments[0].Submission.SubmittedBy)
	s.Nil(stored.GroupAssignments[1].Submission)

	status, err = s.groups.GroupStatus(s.ctx, ref, "g1")
	s.Require().NoError(err)
	s.Require().NotNil(status)
	s.Equal(models.SubmissionStatusSubmitted, status.Status)

	_, err = s.groups.SubmitForGroup(s.ctx, ref, "g1", GroupSubmissionPayload{SubmittedBy: "u3"})
	s.ErrorIs(err, ErrNotGroupMember)

	s.Equal(int64(0), s.fx.Count(&models.GroupAssignmentSubmission{}, "1 = 1"))
}

func (s *ServiceTestSuite) TestGroupMembership_UnknownSource() {
	_, err := s.groups.ResolveGroupFor(s.ctx, "u1", AssignmentRef{Source: "course", ID: "x"})
	s.ErrorIs(err, ErrUnknownAssignmentSource)

	_, err = s.groups.ResolveGroupFor(s.ctx, "u1", AssignmentRef{Source: SourceLesson, ID: "missing"})
	s.ErrorIs(err, ErrAssignmentNotFound)
}
