package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrGroupNotFound           = errors.New("group not found")
	ErrNotGroupMember          = errors.New("user is not a member of the group")
	ErrGroupHasNoMembers       = errors.New("group has no members")
	ErrUnknownAssignmentSource = errors.New("unknown assignment source")
	ErrGroupSubmissionFailed   = errors.New("no member submission could be saved")
)

// AssignmentSource names where an assignment's group rosters are stored
type AssignmentSource string

const (
	// SourceInstance rosters live on assignment_instances.groups and group
	// submissions fan out to one row per member
	SourceInstance AssignmentSource = "instance"
	// SourceLesson rosters and submissions live on lesson_assignments.group_assignments
	SourceLesson AssignmentSource = "lesson"
)

type AssignmentRef struct {
	Source AssignmentSource
	ID     string
}

// GroupSubmissionPayload is one submission made on behalf of a whole group
type GroupSubmissionPayload struct {
	SubmittedBy string
	Content     string
	FileURL     *string
}

// GroupSubmitResult lists the members whose submission was saved
type GroupSubmitResult struct {
	GroupID   string   `json:"group_id"`
	Submitted []string `json:"submitted"`
	Errors    []string `json:"errors"`
}

// GroupSubmissionStatus is the derived state of a group's submission
type GroupSubmissionStatus struct {
	GroupID     string                  `json:"group_id"`
	Status      models.SubmissionStatus `json:"status"`
	Content     string                  `json:"content"`
	FileURL     *string                 `json:"file_url"`
	Grade       *float64                `json:"grade"`
	Feedback    *string                 `json:"feedback"`
	SubmittedAt *time.Time              `json:"submitted_at"`
}

// groupStore hides the storage shape of one assignment source
type groupStore interface {
	groups(ctx context.Context, assignmentID string) ([]models.Group, error)
	submit(ctx context.Context, assignmentID string, group models.Group, payload GroupSubmissionPayload, at time.Time) (*GroupSubmitResult, error)
	status(ctx context.Context, assignmentID string, group models.Group) (*GroupSubmissionStatus, error)
}

// GroupMembership resolves group membership and group submissions across
// every assignment source
type GroupMembership struct {
	stores map[AssignmentSource]groupStore
	logger *zap.Logger
	now    func() time.Time
}

func NewGroupMembership(assignments repository.AssignmentRepository, lessons repository.LessonAssignmentRepository, logger *zap.Logger) *GroupMembership {
	return &GroupMembership{
		stores: map[AssignmentSource]groupStore{
			SourceInstance: &instanceGroupStore{repo: assignments},
			SourceLesson:   &lessonGroupStore{repo: lessons},
		},
		logger: logging.OrNop(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (g *GroupMembership) store(ref AssignmentRef) (groupStore, error) {
	store, ok := g.stores[ref.Source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssignmentSource, ref.Source)
	}
	return store, nil
}

// ResolveGroupFor returns the first group whose roster holds userID, or nil
func (g *GroupMembership) ResolveGroupFor(ctx context.Context, userID string, ref AssignmentRef) (*models.Group, error) {
	store, err := g.store(ref)
	if err != nil {
		return nil, err
	}
	groups, err := store.groups(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].HasMember(userID) {
			return &groups[i], nil
		}
	}
	return nil, nil
}

func (g *GroupMembership) findGroup(ctx context.Context, store groupStore, assignmentID, groupID string) (*models.Group, error) {
	groups, err := store.groups(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].ID == groupID {
			return &groups[i], nil
		}
	}
	return nil, ErrGroupNotFound
}

// SubmitForGroup records one submission for every member of the group. The
// submitter must be on the group's roster.
func (g *GroupMembership) SubmitForGroup(ctx context.Context, ref AssignmentRef, groupID string, payload GroupSubmissionPayload) (*GroupSubmitResult, error) {
	store, err := g.store(ref)
	if err != nil {
		return nil, err
	}
	group, err := g.findGroup(ctx, store, ref.ID, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(payload.SubmittedBy) {
		return nil, ErrNotGroupMember
	}
	if len(group.MemberIDs()) == 0 {
		return nil, ErrGroupHasNoMembers
	}

	payload.Content = sanitizeRichText(payload.Content)
	result, err := store.submit(ctx, ref.ID, *group, payload, g.now())
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		g.logger.Warn("group member submission failed",
			zap.String("source", string(ref.Source)),
			zap.String("assignment_id", ref.ID),
			zap.String("group_id", groupID),
			zap.String("error", msg),
		)
	}
	return result, nil
}

// GroupStatus returns the group's submission state, or nil before anything was submitted
func (g *GroupMembership) GroupStatus(ctx context.Context, ref AssignmentRef, groupID string) (*GroupSubmissionStatus, error) {
	store, err := g.store(ref)
	if err != nil {
		return nil, err
	}
	group, err := g.findGroup(ctx, store, ref.ID, groupID)
	if err != nil {
		return nil, err
	}
	return store.status(ctx, ref.ID, *group)
}

type instanceGroupStore struct {
	repo repository.AssignmentRepository
}

func (s *instanceGroupStore) groups(ctx context.Context, assignmentID string) ([]models.Group, error) {
	instance, err := s.repo.FindInstance(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment instance: %w", err)
	}
	return instance.Groups, nil
}

func (s *instanceGroupStore) submit(ctx context.Context, assignmentID string, group models.Group, payload GroupSubmissionPayload, at time.Time) (*GroupSubmitResult, error) {
	result := &GroupSubmitResult{GroupID: group.ID, Submitted: []string{}, Errors: []string{}}
	for _, memberID := range group.MemberIDs() {
		row := &models.GroupAssignmentSubmission{
			AssignmentID: assignmentID,
			GroupID:      group.ID,
			UserID:       memberID,
			Content:      payload.Content,
			FileURL:      payload.FileURL,
			Status:       models.SubmissionStatusSubmitted,
			SubmittedAt:  &at,
		}
		if err := s.repo.UpsertGroupSubmission(ctx, row); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to save submission for %s: %v", memberID, err))
			continue
		}
		result.Submitted = append(result.Submitted, memberID)
	}
	if len(result.Submitted) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrGroupSubmissionFailed, result.Errors)
	}
	return result, nil
}

func (s *instanceGroupStore) status(ctx context.Context, assignmentID string, group models.Group) (*GroupSubmissionStatus, error) {
	rows, err := s.repo.ListGroupSubmissions(ctx, assignmentID, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group submissions: %w", err)
	}
	// rows of members since removed from the roster do not speak for the group
	var row *models.GroupAssignmentSubmission
	for i := range rows {
		if group.HasMember(rows[i].UserID) {
			row = &rows[i]
			break
		}
	}
	if row == nil {
		return nil, nil
	}
	return &GroupSubmissionStatus{
		GroupID:     group.ID,
		Status:      row.Status,
		Content:     row.Content,
		FileURL:     row.FileURL,
		Grade:       row.Grade,
		Feedback:    row.Feedback,
		SubmittedAt: row.SubmittedAt,
	}, nil
}

type lessonGroupStore struct {
	repo repository.LessonAssignmentRepository
}

func (s *lessonGroupStore) load(ctx context.Context, assignmentID string) (*models.LessonAssignment, error) {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find lesson assignment: %w", err)
	}
	return assignment, nil
}

func (s *lessonGroupStore) groups(ctx context.Context, assignmentID string) ([]models.Group, error) {
	assignment, err := s.load(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	groups := make([]models.Group, len(assignment.GroupAssignments))
	for i, lg := range assignment.GroupAssignments {
		groups[i] = lg.Group
	}
	return groups, nil
}

func (s *lessonGroupStore) submit(ctx context.Context, assignmentID string, group models.Group, payload GroupSubmissionPayload, at time.Time) (*GroupSubmitResult, error) {
	assignment, err := s.load(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range assignment.GroupAssignments {
		if assignment.GroupAssignments[i].ID != group.ID {
			continue
		}
		assignment.GroupAssignments[i].Submission = &models.LegacySubmission{
			Content:     payload.Content,
			FileURL:     payload.FileURL,
			Status:      models.SubmissionStatusSubmitted,
			SubmittedBy: payload.SubmittedBy,
			SubmittedAt: &at,
		}
		found = true
		break
	}
	if !found {
		return nil, ErrGroupNotFound
	}

	rows, err := s.repo.UpdateGroups(ctx, assignmentID, assignment.GroupAssignments)
	if err != nil {
		return nil, fmt.Errorf("failed to save lesson group submission: %w", err)
	}
	if rows == 0 {
		return nil, ErrAssignmentNotFound
	}
	return &GroupSubmitResult{GroupID: group.ID, Submitted: group.MemberIDs(), Errors: []string{}}, nil
}

func (s *lessonGroupStore) status(ctx context.Context, assignmentID string, group models.Group) (*GroupSubmissionStatus, error) {
	assignment, err := s.load(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	for _, lg := range assignment.GroupAssignments {
		if lg.ID != group.ID || lg.Submission == nil {
			continue
		}
		sub := lg.Submission
		return &GroupSubmissionStatus{
			GroupID:     group.ID,
			Status:      sub.Status,
			Content:     sub.Content,
			FileURL:     sub.FileURL,
			Grade:       sub.Grade,
			Feedback:    sub.Feedback,
			SubmittedAt: sub.SubmittedAt,
		}, nil
	}
	return nil, nil
}
