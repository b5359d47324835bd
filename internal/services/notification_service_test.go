package services

import (
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"github.com/yukikurage/community-workspace-api/internal/testutil"
	"github.com/yukikurage/community-workspace-api/internal/utils"
)

func (s *ServiceTestSuite) TestCreateNotification_Defaults() {
	n, err := s.notifications.Create(s.ctx, CreateNotificationInput{
		UserID:      "u1",
		Title:       "  Recordatorio  ",
		Description: "<b>Hoy</b><script>x()</script>",
	})
	s.Require().NoError(err)
	s.Equal("Recordatorio", n.Title)
	s.Equal("<b>Hoy</b>", n.Description)
	s.Equal("general", n.Category)
	s.Equal(models.ImportanceNormal, n.Importance)
	s.Nil(n.ReadAt)
}

func (s *ServiceTestSuite) TestCreateNotification_Validation() {
	_, err := s.notifications.Create(s.ctx, CreateNotificationInput{Title: "x"})
	s.ErrorIs(err, ErrNotificationUserRequired)

	_, err = s.notifications.Create(s.ctx, CreateNotificationInput{UserID: "u1", Title: " "})
	s.ErrorIs(err, ErrNotificationTitleRequired)

	_, err = s.notifications.Create(s.ctx, CreateNotificationInput{UserID: "u1", Title: "x", Importance: "urgent"})
	s.ErrorIs(err, ErrInvalidImportance)
}

func (s *ServiceTestSuite) TestNotifications_ListAndMarkRead() {
	var ids []string
	for _, title := range []string{"uno", "dos", "tres"} {
		n, err := s.notifications.Create(s.ctx, CreateNotificationInput{
			UserID: "u1", Title: title, RelatedURL: testutil.Ptr(MeetingURL("m1")), Importance: models.ImportanceHigh,
		})
		s.Require().NoError(err)
		ids = append(ids, n.ID)
	}
	other, err := s.notifications.Create(s.ctx, CreateNotificationInput{UserID: "u2", Title: "ajena"})
	s.Require().NoError(err)

	page, err := s.notifications.List(s.ctx, "u1", utils.ParsePagination("1", "2"))
	s.Require().NoError(err)
	s.Len(page.Notifications, 2)
	s.Equal(int64(3), page.Total)
	s.Equal(int64(3), page.Unread)

	rows, err := s.notifications.MarkRead(s.ctx, "u1", []string{ids[0], other.ID})
	s.Require().NoError(err)
	s.Equal(int64(1), rows)

	unread, err := s.notifications.UnreadCount(s.ctx, "u2")
	s.Require().NoError(err)
	s.Equal(int64(1), unread)

	_, err = s.notifications.MarkRead(s.ctx, "u1", nil)
	s.ErrorIs(err, ErrNoNotificationIDs)

	rows, err = s.notifications.MarkAllRead(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(int64(2), rows)

	unread, err = s.notifications.UnreadCount(s.ctx, "u1")
	s.Require().NoError(err)
	s.Zero(unread)

	var stored models.Notification
	s.Require().NoError(s.db.Where("id = ?", ids[1]).First(&stored).Error)
	s.Require().NotNil(stored.ReadAt)
	s.True(stored.ReadAt.Equal(s.now))
}

func (s *ServiceTestSuite) TestNotifications_EmptyListIsNotNil() {
	page, err := s.notifications.List(s.ctx, "nobody", utils.ParsePagination("", ""))
	s.Require().NoError(err)
	s.NotNil(page.Notifications)
	s.Empty(page.Notifications)
	s.Zero(page.Total)
}

func (s *ServiceTestSuite) TestNotifyAssignees_GroupsItemsPerUser() {
	meeting := s.fx.Meeting("w1", "u1")
	s.fx.Profile("u2", "Ana", "Rojas", "ana@example.com")
	s.fx.Profile("u3", "Luis", "Soto", "")

	t1 := s.fx.Task(meeting.ID, "Preparar acta", models.PriorityHigh, s.days(2))
	t2 := s.fx.Task(meeting.ID, "Enviar rubrica", models.PriorityLow, nil)
	c1 := s.fx.Commitment(meeting.ID, "Revisar plan", s.days(5))
	unassigned := s.fx.Task(meeting.ID, "Sin responsable", models.PriorityLow, nil)
	s.assign(t1, "u2")
	s.assign(c1, "u2")
	s.assign(t2, "u3")

	var items []models.TrackableItem
	for _, id := range []string{t1.ID, t2.ID, unassigned.ID} {
		task := s.reloadTask(id)
		items = append(items, &task)
	}
	var commitment models.Commitment
	s.Require().NoError(s.db.Where("id = ?", c1.ID).First(&commitment).Error)
	items = append(items, &commitment)

	notifier := NewAssignmentNotifier(repository.NewProfileRepository(s.db), s.notifications, s.mailer, nil)
	notifier.NotifyAssignees(s.ctx, meeting, items)

	s.Equal(int64(1), s.fx.Count(&models.Notification{}, "user_id = ?", "u2"))
	s.Equal(int64(1), s.fx.Count(&models.Notification{}, "user_id = ?", "u3"))

	var n models.Notification
	s.Require().NoError(s.db.Where("user_id = ?", "u2").First(&n).Error)
	s.Equal("meeting", n.Category)
	s.Require().NotNil(n.RelatedURL)
	s.Equal(MeetingURL(meeting.ID), *n.RelatedURL)
	s.Contains(n.Description, "Tarea: Preparar acta (vence 2026-03-17)")
	s.Contains(n.Description, "Compromiso: Revisar plan (vence 2026-03-20)")

	sent := s.mailer.Sent()
	s.Require().Len(sent, 1)
	s.Equal("ana@example.com", sent[0].To[0].Address)
	s.Equal("Ana Rojas", sent[0].To[0].Name)
	s.Contains(sent[0].TextContent, MeetingURL(meeting.ID))
}

func (s *ServiceTestSuite) TestNotifyAssignees_NilNotifierIsNoop() {
	var notifier *AssignmentNotifier
	meeting := s.fx.Meeting("w1", "u1")
	task := s.fx.Task(meeting.ID, "x", models.PriorityLow, nil)
	s.NotPanics(func() { notifier.NotifyAssignees(s.ctx, meeting, []models.TrackableItem{task}) })
}
