package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"go.uber.org/zap"
)

// AssignmentNotifier tells users about tasks and commitments assigned to them
// in a meeting. Delivery failures are logged and never returned. A nil
// *AssignmentNotifier is valid and does nothing.
type AssignmentNotifier struct {
	profiles      repository.ProfileRepository
	notifications *NotificationService
	mailer        Mailer
	logger        *zap.Logger
}

func NewAssignmentNotifier(profiles repository.ProfileRepository, notifications *NotificationService, mailer Mailer, logger *zap.Logger) *AssignmentNotifier {
	return &AssignmentNotifier{
		profiles:      profiles,
		notifications: notifications,
		mailer:        mailer,
		logger:        logging.OrNop(logger),
	}
}

// MeetingURL is the in-app link to a meeting
func MeetingURL(meetingID string) string {
	return "/community/workspace?meeting=" + meetingID
}

// NotifyAssignees sends one notification per assignee listing their new items
func (n *AssignmentNotifier) NotifyAssignees(ctx context.Context, meeting *models.Meeting, items []models.TrackableItem) {
	if n == nil || meeting == nil || len(items) == 0 {
		return
	}

	byUser := make(map[string][]models.TrackableItem)
	var order []string
	for _, item := range items {
		assignee := item.Tracking().AssignedTo
		if assignee == nil || *assignee == "" {
			continue
		}
		if _, ok := byUser[*assignee]; !ok {
			order = append(order, *assignee)
		}
		byUser[*assignee] = append(byUser[*assignee], item)
	}
	if len(order) == 0 {
		return
	}

	profiles := make(map[string]models.Profile, len(order))
	if n.profiles != nil {
		found, err := n.profiles.FindByIDs(ctx, order)
		if err != nil {
			n.logger.Warn("failed to load assignee profiles", zap.String("meeting_id", meeting.ID), zap.Error(err))
		}
		for _, p := range found {
			profiles[p.ID] = p
		}
	}

	url := MeetingURL(meeting.ID)
	for _, userID := range order {
		assigned := byUser[userID]
		title := fmt.Sprintf("Nuevas asignaciones en %s", meeting.Title)
		body := describeAssignments(assigned)

		if n.notifications != nil {
			_, err := n.notifications.Create(ctx, CreateNotificationInput{
				UserID:      userID,
				Title:       title,
				Description: body,
				Category:    "meeting",
				RelatedURL:  &url,
				Importance:  models.ImportanceNormal,
			})
			if err != nil {
				n.logger.Warn("failed to create assignment notification",
					zap.String("meeting_id", meeting.ID),
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
		}

		profile, ok := profiles[userID]
		if !ok || profile.Email == "" || n.mailer == nil {
			continue
		}
		err := n.mailer.Send(ctx, Email{
			To:          []mail.Address{{Name: profile.FullName(), Address: profile.Email}},
			Subject:     title,
			TextContent: body + "\n\n" + url,
		})
		if err != nil {
			n.logger.Warn("failed to email assignment notification",
				zap.String("meeting_id", meeting.ID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

func describeAssignments(items []models.TrackableItem) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		label := "Tarea"
		if item.Kind() == models.ItemKindCommitment {
			label = "Compromiso"
		}
		fmt.Fprintf(&b, "%s: %s", label, item.Heading())
		if due := item.Tracking().DueDate; due != nil {
			fmt.Fprintf(&b, " (vence %s)", due.Format("2006-01-02"))
		}
	}
	return b.String()
}
