package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound         = errors.New("assignment template not found")
	ErrInstanceNotFound         = errors.New("assignment instance not found")
	ErrGroupSubmissionNotFound  = errors.New("group has not submitted")
	ErrTemplateTitleRequired    = errors.New("template title is required")
	ErrLessonRequired           = errors.New("lesson is required")
	ErrCourseRequired           = errors.New("course is required")
	ErrInvalidGroupSize         = errors.New("min group size must be at least 1 and not exceed max group size")
	ErrInvalidDateWindow        = errors.New("due date must not be before start date")
	ErrInvalidInstanceStatus    = errors.New("invalid assignment instance status")
	ErrInvalidSubmissionStatus  = errors.New("invalid submission status")
	ErrDuplicateGroupMembership = errors.New("a user may belong to only one group")
)

// AssignmentService handles assignment templates, instances and submissions
type AssignmentService struct {
	repo   repository.AssignmentRepository
	groups *GroupMembership
	authz  *Authorizer
	logger *zap.Logger
	now    func() time.Time
}

func NewAssignmentService(repo repository.AssignmentRepository, groups *GroupMembership, authz *Authorizer, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		repo:   repo,
		groups: groups,
		authz:  authz,
		logger: logging.OrNop(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AuthorizeTemplateAuthor fails unless the user may write templates
func (s *AssignmentService) AuthorizeTemplateAuthor(ctx context.Context, userID string) error {
	if !s.authz.CanAuthorTemplates(ctx, userID) {
		return ErrInsufficientPermissions
	}
	return nil
}

// AuthorizeInstanceAuthor fails unless the user may open an instance in the
// given school or community
func (s *AssignmentService) AuthorizeInstanceAuthor(ctx context.Context, userID string, schoolID, communityID *string) error {
	if !s.authz.CanAuthorInstance(ctx, userID, schoolID, communityID) {
		return ErrInsufficientPermissions
	}
	return nil
}

// AuthorizeInstanceManager loads the instance and fails unless the user may
// manage it
func (s *AssignmentService) AuthorizeInstanceManager(ctx context.Context, userID, instanceID string) (*models.AssignmentInstance, error) {
	instance, err := s.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanManageAssignment(ctx, userID, instance) {
		s.logger.Info("assignment management denied", zap.String("user_id", userID), zap.String("instance_id", instanceID))
		return nil, ErrInsufficientPermissions
	}
	return instance, nil
}

// CreateTemplateInput represents input for authoring a template
type CreateTemplateInput struct {
	LessonID       string
	BlockIndex     int
	Title          string
	Description    string
	Instructions   string
	MinGroupSize   int
	MaxGroupSize   int
	AssignmentType string
	CreatedBy      string
}

func (s *AssignmentService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*models.AssignmentTemplate, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTemplateTitleRequired
	}
	if input.LessonID == "" {
		return nil, ErrLessonRequired
	}
	minSize, maxSize := input.MinGroupSize, input.MaxGroupSize
	if minSize == 0 {
		minSize = 1
	}
	if maxSize == 0 {
		maxSize = minSize
	}
	if minSize < 1 || maxSize < minSize {
		return nil, ErrInvalidGroupSize
	}
	assignmentType := input.AssignmentType
	if assignmentType == "" {
		assignmentType = "individual"
		if maxSize > 1 {
			assignmentType = "group"
		}
	}

	template := &models.AssignmentTemplate{
		LessonID:       input.LessonID,
		BlockIndex:     input.BlockIndex,
		Title:          title,
		Description:    sanitizeRichText(input.Description),
		Instructions:   sanitizeRichText(input.Instructions),
		MinGroupSize:   minSize,
		MaxGroupSize:   maxSize,
		AssignmentType: assignmentType,
		CreatedBy:      input.CreatedBy,
	}
	if err := s.repo.CreateTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *AssignmentService) GetTemplate(ctx context.Context, id string) (*models.AssignmentTemplate, error) {
	template, err := s.repo.FindTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return template, nil
}

// CreateInstanceInput represents input for deploying a template
type CreateInstanceInput struct {
	TemplateID   string
	CourseID     string
	SchoolID     *string
	CommunityID  *string
	CohortName   *string
	Title        string
	Description  string
	Instructions string
	StartDate    *time.Time
	DueDate      *time.Time
	Status       models.InstanceStatus
	Groups       []models.Group
	CreatedBy    string
}

// CreateAssignmentInstance deploys a template. Empty content fields are
// copied from the template.
func (s *AssignmentService) CreateAssignmentInstance(ctx context.Context, input CreateInstanceInput) (*models.AssignmentInstance, error) {
	if input.CourseID == "" {
		return nil, ErrCourseRequired
	}
	template, err := s.GetTemplate(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}
	if input.StartDate != nil && input.DueDate != nil && input.DueDate.Before(*input.StartDate) {
		return nil, ErrInvalidDateWindow
	}
	status := input.Status
	if status == "" {
		status = models.InstanceStatusDraft
	}
	if !status.Valid() {
		return nil, ErrInvalidInstanceStatus
	}
	groups, err := normalizeGroups(input.Groups)
	if err != nil {
		return nil, err
	}

	instance := &models.AssignmentInstance{
		TemplateID:   template.ID,
		CourseID:     input.CourseID,
		SchoolID:     input.SchoolID,
		CommunityID:  input.CommunityID,
		CohortName:   input.CohortName,
		Title:        firstNonEmpty(strings.TrimSpace(input.Title), template.Title),
		Description:  firstNonEmpty(sanitizeRichText(input.Description), template.Description),
		Instructions: firstNonEmpty(sanitizeRichText(input.Instructions), template.Instructions),
		StartDate:    input.StartDate,
		DueDate:      input.DueDate,
		Status:       status,
		Groups:       groups,
		CreatedBy:    input.CreatedBy,
	}
	if err := s.repo.CreateInstance(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to create assignment instance: %w", err)
	}
	return instance, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeGroups assigns IDs to new groups and rejects rosters that place a
// user in more than one group
func normalizeGroups(groups []models.Group) ([]models.Group, error) {
	out := make([]models.Group, 0, len(groups))
	owner := make(map[string]string)
	for _, g := range groups {
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		g.Name = strings.TrimSpace(g.Name)
		if g.Members == nil {
			g.Members = []models.GroupMember{}
		}
		for _, memberID := range g.MemberIDs() {
			if other, ok := owner[memberID]; ok && other != g.ID {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateGroupMembership, memberID)
			}
			owner[memberID] = g.ID
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *AssignmentService) GetInstance(ctx context.Context, id string) (*models.AssignmentInstance, error) {
	instance, err := s.repo.FindInstance(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to find assignment instance: %w", err)
	}
	return instance, nil
}

// UpdateAssignmentGroups replaces the instance's roster snapshot
func (s *AssignmentService) UpdateAssignmentGroups(ctx context.Context, instanceID string, groups []models.Group) (*models.AssignmentInstance, error) {
	normalized, err := normalizeGroups(groups)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.UpdateInstanceGroups(ctx, instanceID, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to update groups: %w", err)
	}
	if rows == 0 {
		return nil, ErrInstanceNotFound
	}
	return s.GetInstance(ctx, instanceID)
}

// SetInstanceStatus moves an instance to any status from any status
func (s *AssignmentService) SetInstanceStatus(ctx context.Context, instanceID string, status models.InstanceStatus) (*models.AssignmentInstance, error) {
	if !status.Valid() {
		return nil, ErrInvalidInstanceStatus
	}
	rows, err := s.repo.UpdateInstance(ctx, instanceID, map[string]interface{}{
		"status":     status,
		"updated_at": s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update instance status: %w", err)
	}
	if rows == 0 {
		return nil, ErrInstanceNotFound
	}
	return s.GetInstance(ctx, instanceID)
}

func (s *AssignmentService) ActivateAssignmentInstance(ctx context.Context, instanceID string) (*models.AssignmentInstance, error) {
	return s.SetInstanceStatus(ctx, instanceID, models.InstanceStatusActive)
}

func (s *AssignmentService) ArchiveAssignmentInstance(ctx context.Context, instanceID string) (*models.AssignmentInstance, error) {
	return s.SetInstanceStatus(ctx, instanceID, models.InstanceStatusArchived)
}

// GetUserGroupInInstance returns the user's group, or nil when the user is in none
func (s *AssignmentService) GetUserGroupInInstance(ctx context.Context, instanceID, userID string) (*models.Group, error) {
	group, err := s.groups.ResolveGroupFor(ctx, userID, AssignmentRef{Source: SourceInstance, ID: instanceID})
	if errors.Is(err, ErrAssignmentNotFound) {
		return nil, ErrInstanceNotFound
	}
	return group, err
}

// SubmitAssignmentInput represents one user's submission
type SubmitAssignmentInput struct {
	InstanceID     string
	UserID         string
	GroupID        string
	Content        string
	FileURL        *string
	SubmissionType string
	Status         models.SubmissionStatus
}

// SubmitAssignment upserts the submission keyed on instance, user and group
func (s *AssignmentService) SubmitAssignment(ctx context.Context, input SubmitAssignmentInput) (*models.AssignmentSubmission, error) {
	instance, err := s.GetInstance(ctx, input.InstanceID)
	if err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.SubmissionStatusSubmitted
	}
	if !status.Valid() {
		return nil, ErrInvalidSubmissionStatus
	}
	if input.GroupID != "" {
		member := false
		for _, g := range instance.Groups {
			if g.ID == input.GroupID {
				member = g.HasMember(input.UserID)
				break
			}
		}
		if !member {
			return nil, ErrNotGroupMember
		}
	}
	submissionType := input.SubmissionType
	if submissionType == "" {
		submissionType = "text"
	}

	now := s.now()
	submission := &models.AssignmentSubmission{
		InstanceID:     input.InstanceID,
		UserID:         input.UserID,
		GroupID:        input.GroupID,
		Content:        sanitizeRichText(input.Content),
		FileURL:        input.FileURL,
		SubmissionType: submissionType,
		Status:         status,
		UpdatedAt:      now,
	}
	if status == models.SubmissionStatusSubmitted {
		submission.SubmittedAt = &now
	}
	if err := s.repo.UpsertSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	stored, err := s.repo.FindSubmission(ctx, input.InstanceID, input.UserID, input.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload submission: %w", err)
	}
	return stored, nil
}

// SubmitGroupAssignment writes one submission row per member of the group
func (s *AssignmentService) SubmitGroupAssignment(ctx context.Context, instanceID, groupID string, payload GroupSubmissionPayload) (*GroupSubmitResult, error) {
	result, err := s.groups.SubmitForGroup(ctx, AssignmentRef{Source: SourceInstance, ID: instanceID}, groupID, payload)
	if errors.Is(err, ErrAssignmentNotFound) {
		return nil, ErrInstanceNotFound
	}
	return result, err
}

// GroupSubmissionStatus returns the group's derived submission state, or nil
// before the group submitted
func (s *AssignmentService) GroupSubmissionStatus(ctx context.Context, instanceID, groupID string) (*GroupSubmissionStatus, error) {
	status, err := s.groups.GroupStatus(ctx, AssignmentRef{Source: SourceInstance, ID: instanceID}, groupID)
	if errors.Is(err, ErrAssignmentNotFound) {
		return nil, ErrInstanceNotFound
	}
	return status, err
}

// GradeInput is the grade given to a group
type GradeInput struct {
	Grade    float64
	Feedback *string
	GradedBy string
}

// GradeResult lists the member rows that were graded
type GradeResult struct {
	Graded []string `json:"graded"`
	Errors []string `json:"errors"`
}

// GradeGroupSubmission applies the same grade to every member row of the
// group. Rows are updated one by one; failures are reported per member.
func (s *AssignmentService) GradeGroupSubmission(ctx context.Context, instanceID, groupID string, input GradeInput) (*GradeResult, error) {
	rows, err := s.repo.ListGroupSubmissions(ctx, instanceID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group submissions: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrGroupSubmissionNotFound
	}

	now := s.now()
	fields := map[string]interface{}{
		"status":     models.SubmissionStatusGraded,
		"grade":      input.Grade,
		"feedback":   sanitizeOptional(input.Feedback),
		"graded_by":  input.GradedBy,
		"graded_at":  now,
		"updated_at": now,
	}

	result := &GradeResult{Graded: []string{}, Errors: []string{}}
	for _, row := range rows {
		n, err := s.repo.UpdateGroupSubmission(ctx, instanceID, groupID, row.UserID, fields)
		switch {
		case err != nil:
			s.logger.Warn("failed to grade member submission",
				zap.String("instance_id", instanceID),
				zap.String("group_id", groupID),
				zap.String("user_id", row.UserID),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to grade submission for %s: %v", row.UserID, err))
		case n == 0:
			result.Errors = append(result.Errors, fmt.Sprintf("Submission for %s was not updated", row.UserID))
		default:
			result.Graded = append(result.Graded, row.UserID)
		}
	}
	return result, nil
}
