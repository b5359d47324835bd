package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/community-workspace-api/internal/database"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrMeetingNotFound         = errors.New("meeting not found")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrMeetingTitleRequired    = errors.New("meeting title is required")
	ErrWorkspaceRequired       = errors.New("workspace is required")
	ErrMeetingDateRequired     = errors.New("meeting date is required")
	ErrInvalidMeetingStatus    = errors.New("invalid meeting status")
	ErrInvalidPriority         = errors.New("invalid task priority")
)

// StorageMode names the store a meeting aggregate was read from
type StorageMode string

const (
	StorageNormalized StorageMode = "normalized"
	StorageSimple     StorageMode = "simple"
)

// MeetingWithDetails is a meeting with its child collections. The collections
// are never nil.
type MeetingWithDetails struct {
	models.Meeting
	Agreements  []models.Agreement  `json:"agreements"`
	Commitments []models.Commitment `json:"commitments"`
	Tasks       []models.Task       `json:"tasks"`
	Attendees   []models.Attendee   `json:"attendees"`
	StorageMode StorageMode         `json:"-"`
}

// TrackableItems returns the tasks and commitments of the meeting
func (m *MeetingWithDetails) TrackableItems() []models.TrackableItem {
	items := make([]models.TrackableItem, 0, len(m.Tasks)+len(m.Commitments))
	for i := range m.Tasks {
		items = append(items, &m.Tasks[i])
	}
	for i := range m.Commitments {
		items = append(items, &m.Commitments[i])
	}
	return items
}

// MeetingService builds and documents meetings
type MeetingService struct {
	meetings repository.MeetingRepository
	authz    *Authorizer
	audit    *AuditLogger
	notifier *AssignmentNotifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewMeetingService(
	meetings repository.MeetingRepository,
	authz *Authorizer,
	audit *AuditLogger,
	notifier *AssignmentNotifier,
	logger *zap.Logger,
) *MeetingService {
	return &MeetingService{
		meetings: meetings,
		authz:    authz,
		audit:    audit,
		notifier: notifier,
		logger:   logging.OrNop(logger),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetMeetingWithDetails assembles a meeting and its children. The meeting row
// must load; each child collection that fails to load is logged and returned
// empty. When the normalized tables are missing the single-table store is read.
func (s *MeetingService) GetMeetingWithDetails(ctx context.Context, meetingID string) (*MeetingWithDetails, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if database.IsUndefinedTable(err) {
			s.logger.Warn("meeting tables missing, reading simple meetings", zap.String("meeting_id", meetingID))
			return s.simpleMeetingDetails(ctx, meetingID)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}

	details := &MeetingWithDetails{Meeting: *meeting, StorageMode: StorageNormalized}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		agreements, err := s.meetings.ListAgreements(gctx, meetingID)
		s.logChildFailure("agreements", meetingID, err)
		details.Agreements = agreements
		return nil
	})
	g.Go(func() error {
		tasks, err := s.meetings.ListTasks(gctx, meetingID)
		s.logChildFailure("tasks", meetingID, err)
		details.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		commitments, err := s.meetings.ListCommitments(gctx, meetingID)
		s.logChildFailure("commitments", meetingID, err)
		details.Commitments = commitments
		return nil
	})
	g.Go(func() error {
		attendees, err := s.meetings.ListAttendees(gctx, meetingID)
		s.logChildFailure("attendees", meetingID, err)
		details.Attendees = attendees
		return nil
	})
	_ = g.Wait()

	return normalizeDetails(details), nil
}

func (s *MeetingService) logChildFailure(collection, meetingID string, err error) {
	if err == nil {
		return
	}
	s.logger.Warn("failed to load meeting collection",
		zap.String("collection", collection),
		zap.String("meeting_id", meetingID),
		zap.Error(err),
	)
}

func (s *MeetingService) simpleMeetingDetails(ctx context.Context, meetingID string) (*MeetingWithDetails, error) {
	simple, err := s.meetings.FindSimpleByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find simple meeting: %w", err)
	}
	return normalizeDetails(&MeetingWithDetails{
		Meeting:     simple.AsMeeting(),
		Agreements:  simple.MeetingData.Agreements,
		Commitments: simple.MeetingData.Commitments,
		Tasks:       simple.MeetingData.Tasks,
		Attendees:   simple.MeetingData.Attendees,
		StorageMode: StorageSimple,
	}), nil
}

func normalizeDetails(d *MeetingWithDetails) *MeetingWithDetails {
	d.Agreements = nonNil(d.Agreements)
	d.Commitments = nonNil(d.Commitments)
	d.Tasks = nonNil(d.Tasks)
	d.Attendees = nonNil(d.Attendees)
	return d
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ListMeetingsInput represents filters for listing a workspace's meetings
type ListMeetingsInput struct {
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

func (s *MeetingService) ListMeetings(ctx context.Context, workspaceID string, input ListMeetingsInput) ([]models.Meeting, int64, error) {
	for _, status := range input.Statuses {
		if !status.Valid() {
			return nil, 0, ErrInvalidMeetingStatus
		}
	}
	meetings, total, err := s.meetings.List(ctx, repository.MeetingFilter{
		WorkspaceID:     workspaceID,
		Statuses:        input.Statuses,
		DateFrom:        input.DateFrom,
		DateTo:          input.DateTo,
		Search:          strings.TrimSpace(input.Search),
		SortBy:          input.SortBy,
		SortDesc:        input.SortDesc,
		IncludeInactive: input.IncludeInactive,
		Page:            input.Page,
		PageSize:        input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meetings: %w", err)
	}
	return nonNil(meetings), total, nil
}

// CanManageMeetings reports whether the user may create and document meetings in the workspace
func (s *MeetingService) CanManageMeetings(ctx context.Context, userID, workspaceID string) bool {
	return s.authz.CanManageMeetings(ctx, userID, workspaceID)
}

// CanViewMeeting reports whether the user may read the meeting
func (s *MeetingService) CanViewMeeting(ctx context.Context, userID string, meeting *MeetingWithDetails) bool {
	return s.authz.CanViewMeeting(ctx, userID, meeting)
}

type AgreementInput struct {
	Text     string
	Category *string
}

type CommitmentInput struct {
	Text       string
	AssignedTo *string
	DueDate    *time.Time
}

type TaskInput struct {
	Title          string
	Description    *string
	AssignedTo     *string
	DueDate        *time.Time
	Priority       models.Priority
	Category       *string
	EstimatedHours *float64
}

// MeetingDocumentation is the written record of a meeting
type MeetingDocumentation struct {
	Summary     *string
	Notes       *string
	Agreements  []AgreementInput
	Commitments []CommitmentInput
	Tasks       []TaskInput
}

// CreateMeetingInput represents input for creating a documented meeting
type CreateMeetingInput struct {
	WorkspaceID     string
	CreatedBy       string
	Title           string
	Description     *string
	MeetingDate     time.Time
	DurationMinutes int
	Location        *string
	Status          models.MeetingStatus
	FacilitatorID   *string
	SecretaryID     *string
	AttendeeIDs     []string
	Documentation   MeetingDocumentation
}

// MeetingWriteResult carries the stored meeting and the child writes that failed
type MeetingWriteResult struct {
	Meeting *MeetingWithDetails
	Errors  []string
}

// CreateMeetingWithDocumentation inserts the meeting row and then its children.
// Children are written independently: a failed child write is reported in
// Errors and does not remove the meeting.
func (s *MeetingService) CreateMeetingWithDocumentation(ctx context.Context, input CreateMeetingInput) (*MeetingWriteResult, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrMeetingTitleRequired
	}
	if input.WorkspaceID == "" {
		return nil, ErrWorkspaceRequired
	}
	if input.MeetingDate.IsZero() {
		return nil, ErrMeetingDateRequired
	}
	status := input.Status
	if status == "" {
		status = models.MeetingStatusScheduled
	}
	if !status.Valid() {
		return nil, ErrInvalidMeetingStatus
	}
	duration := input.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	if !s.authz.CanManageMeetings(ctx, input.CreatedBy, input.WorkspaceID) {
		return nil, ErrInsufficientPermissions
	}

	meeting := models.Meeting{
		WorkspaceID:     input.WorkspaceID,
		Title:           title,
		Description:     sanitizeOptional(input.Description),
		MeetingDate:     input.MeetingDate.UTC(),
		DurationMinutes: duration,
		Location:        input.Location,
		Status:          status,
		Summary:         sanitizeOptional(input.Documentation.Summary),
		Notes:           sanitizeOptional(input.Documentation.Notes),
		CreatedBy:       input.CreatedBy,
		FacilitatorID:   input.FacilitatorID,
		SecretaryID:     input.SecretaryID,
		IsActive:        true,
	}

	agreements, commitments, tasks, err := buildChildren(input.Documentation)
	if err != nil {
		return nil, err
	}
	attendees := buildAttendees(input.AttendeeIDs, input.FacilitatorID, input.SecretaryID)

	if err := s.meetings.Create(ctx, &meeting); err != nil {
		if !database.IsUndefinedTable(err) {
			return nil, fmt.Errorf("failed to create meeting: %w", err)
		}
		s.logger.Warn("meeting tables missing, writing simple meeting", zap.String("workspace_id", input.WorkspaceID))
		return s.createSimple(ctx, meeting, agreements, commitments, tasks, attendees)
	}

	result := &MeetingWriteResult{Errors: []string{}}
	result.Errors = append(result.Errors, s.insertChildren(ctx, meeting.ID, agreements, commitments, tasks)...)
	if len(attendees) > 0 {
		for i := range attendees {
			attendees[i].MeetingID = meeting.ID
		}
		if err := s.meetings.CreateAttendees(ctx, attendees); err != nil {
			result.Errors = append(result.Errors, s.childError("attendees", meeting.ID, err))
		}
	}

	s.audit.Log(ctx, AuditEvent{
		MeetingID:   meeting.ID,
		WorkspaceID: &meeting.WorkspaceID,
		UserID:      input.CreatedBy,
		Action:      AuditMeetingCreated,
		Success:     true,
		Details:     map[string]string{"failed_children": fmt.Sprint(len(result.Errors))},
	})

	details, err := s.GetMeetingWithDetails(ctx, meeting.ID)
	if err != nil {
		s.logger.Warn("failed to reload created meeting", zap.String("meeting_id", meeting.ID), zap.Error(err))
		details = normalizeDetails(&MeetingWithDetails{
			Meeting:     meeting,
			Agreements:  agreements,
			Commitments: commitments,
			Tasks:       tasks,
			Attendees:   attendees,
			StorageMode: StorageNormalized,
		})
	}
	result.Meeting = details

	s.notifier.NotifyAssignees(ctx, &details.Meeting, details.TrackableItems())
	return result, nil
}

func (s *MeetingService) createSimple(
	ctx context.Context,
	meeting models.Meeting,
	agreements []models.Agreement,
	commitments []models.Commitment,
	tasks []models.Task,
	attendees []models.Attendee,
) (*MeetingWriteResult, error) {
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	for i := range agreements {
		agreements[i].ID, agreements[i].MeetingID = uuid.NewString(), meeting.ID
	}
	for i := range commitments {
		commitments[i].ID, commitments[i].MeetingID = uuid.NewString(), meeting.ID
	}
	for i := range tasks {
		tasks[i].ID, tasks[i].MeetingID = uuid.NewString(), meeting.ID
	}
	for i := range attendees {
		attendees[i].ID, attendees[i].MeetingID = uuid.NewString(), meeting.ID
	}

	simple := models.NewSimpleMeeting(meeting, models.MeetingData{
		Agreements:  agreements,
		Commitments: commitments,
		Tasks:       tasks,
		Attendees:   attendees,
	})
	if err := s.meetings.CreateSimple(ctx, simple); err != nil {
		return nil, fmt.Errorf("failed to create simple meeting: %w", err)
	}

	details := normalizeDetails(&MeetingWithDetails{
		Meeting:     simple.AsMeeting(),
		Agreements:  agreements,
		Commitments: commitments,
		Tasks:       tasks,
		Attendees:   attendees,
		StorageMode: StorageSimple,
	})
	s.notifier.NotifyAssignees(ctx, &details.Meeting, details.TrackableItems())
	return &MeetingWriteResult{Meeting: details, Errors: []string{}}, nil
}

func (s *MeetingService) childError(collection, meetingID string, err error) string {
	s.logger.Error("failed to write meeting collection",
		zap.String("collection", collection),
		zap.String("meeting_id", meetingID),
		zap.Error(err),
	)
	return fmt.Sprintf("Failed to save %s: %v", collection, err)
}

func (s *MeetingService) insertChildren(
	ctx context.Context,
	meetingID string,
	agreements []models.Agreement,
	commitments []models.Commitment,
	tasks []models.Task,
) []string {
	var errs []string
	for i := range agreements {
		agreements[i].MeetingID = meetingID
	}
	for i := range commitments {
		commitments[i].MeetingID = meetingID
	}
	for i := range tasks {
		tasks[i].MeetingID = meetingID
	}

	if len(agreements) > 0 {
		if err := s.meetings.CreateAgreements(ctx, agreements); err != nil {
			errs = append(errs, s.childError("agreements", meetingID, err))
		}
	}
	if len(commitments) > 0 {
		if err := s.meetings.CreateCommitments(ctx, commitments); err != nil {
			errs = append(errs, s.childError("commitments", meetingID, err))
		}
	}
	if len(tasks) > 0 {
		if err := s.meetings.CreateTasks(ctx, tasks); err != nil {
			errs = append(errs, s.childError("tasks", meetingID, err))
		}
	}
	return errs
}

func buildChildren(doc MeetingDocumentation) ([]models.Agreement, []models.Commitment, []models.Task, error) {
	agreements := make([]models.Agreement, 0, len(doc.Agreements))
	for _, a := range doc.Agreements {
		text := sanitizeRichText(a.Text)
		if text == "" {
			continue
		}
		agreements = append(agreements, models.Agreement{
			AgreementText: text,
			OrderIndex:    len(agreements),
			Category:      a.Category,
		})
	}

	commitments := make([]models.Commitment, 0, len(doc.Commitments))
	for _, c := range doc.Commitments {
		text := sanitizeRichText(c.Text)
		if text == "" {
			continue
		}
		commitments = append(commitments, models.Commitment{
			CommitmentText: text,
			Trackable:      newTrackable(c.AssignedTo, c.DueDate),
		})
	}

	tasks := make([]models.Task, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		priority := t.Priority
		if priority == "" {
			priority = models.PriorityMedium
		}
		if !priority.Valid() {
			return nil, nil, nil, fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
		}
		tasks = append(tasks, models.Task{
			TaskTitle:       title,
			TaskDescription: sanitizeOptional(t.Description),
			Priority:        priority,
			Category:        t.Category,
			EstimatedHours:  t.EstimatedHours,
			Trackable:       newTrackable(t.AssignedTo, t.DueDate),
		})
	}
	return agreements, commitments, tasks, nil
}

func newTrackable(assignedTo *string, due *time.Time) models.Trackable {
	if assignedTo != nil && strings.TrimSpace(*assignedTo) == "" {
		assignedTo = nil
	}
	if due != nil {
		utc := due.UTC()
		due = &utc
	}
	return models.Trackable{
		AssignedTo: assignedTo,
		DueDate:    due,
		Status:     models.TrackStatusPending,
	}
}

func buildAttendees(userIDs []string, facilitatorID, secretaryID *string) []models.Attendee {
	seen := make(map[string]struct{}, len(userIDs))
	attendees := make([]models.Attendee, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		role := models.AttendeeParticipant
		switch {
		case facilitatorID != nil && *facilitatorID == id:
			role = models.AttendeeFacilitator
		case secretaryID != nil && *secretaryID == id:
			role = models.AttendeeSecretary
		}
		attendees = append(attendees, models.Attendee{
			UserID:           id,
			AttendanceStatus: models.AttendanceInvited,
			Role:             role,
		})
	}
	return attendees
}

// UpdateDocumentationInput replaces a meeting's written record
type UpdateDocumentationInput struct {
	UserID        string
	Status        *models.MeetingStatus
	Documentation MeetingDocumentation
}

// UpdateMeetingDocumentation updates the meeting row and replaces its
// agreements, commitments and tasks
func (s *MeetingService) UpdateMeetingDocumentation(ctx context.Context, meetingID string, input UpdateDocumentationInput) (*MeetingWriteResult, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	if meeting.CreatedBy != input.UserID && !s.authz.CanManageMeetings(ctx, input.UserID, meeting.WorkspaceID) {
		return nil, ErrInsufficientPermissions
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidMeetingStatus
	}

	agreements, commitments, tasks, err := buildChildren(input.Documentation)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"summary":    sanitizeOptional(input.Documentation.Summary),
		"notes":      sanitizeOptional(input.Documentation.Notes),
		"updated_at": s.now(),
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	rows, err := s.meetings.UpdateFields(ctx, meetingID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}
	if rows == 0 {
		return nil, ErrInsufficientPermissions
	}

	result := &MeetingWriteResult{Errors: []string{}}
	replace := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"agreements", s.meetings.DeleteAgreements},
		{"commitments", s.meetings.DeleteCommitments},
		{"tasks", s.meetings.DeleteTasks},
	}
	for _, step := range replace {
		if err := step.fn(ctx, meetingID); err != nil {
			result.Errors = append(result.Errors, s.childError(step.name, meetingID, err))
		}
	}
	result.Errors = append(result.Errors, s.insertChildren(ctx, meetingID, agreements, commitments, tasks)...)

	s.audit.Log(ctx, AuditEvent{
		MeetingID:   meetingID,
		WorkspaceID: &meeting.WorkspaceID,
		UserID:      input.UserID,
		Action:      AuditMeetingUpdated,
		Success:     len(result.Errors) == 0,
	})

	details, err := s.GetMeetingWithDetails(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	result.Meeting = details

	s.notifier.NotifyAssignees(ctx, &details.Meeting, details.TrackableItems())
	return result, nil
}
