package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/dto"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/middleware"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"go.uber.org/zap"
)

// AssignmentHandler serves assignment templates, instances and submissions
type AssignmentHandler struct {
	assignments *services.AssignmentService
	groups      *services.GroupMembership
	logger      *zap.Logger
}

func NewAssignmentHandler(assignments *services.AssignmentService, groups *services.GroupMembership, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		groups:      groups,
		logger:      logging.OrNop(logger),
	}
}

func (h *AssignmentHandler) CreateTemplate(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.assignments.AuthorizeTemplateAuthor(c.Request.Context(), userID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	template, err := h.assignments.CreateTemplate(c.Request.Context(), req.ToInput(userID))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.Created(c, template)
}

func (h *AssignmentHandler) GetTemplate(c *gin.Context) {
	template, err := h.assignments.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, template)
}

func (h *AssignmentHandler) CreateInstance(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input := req.ToInput(userID)
	if err := h.assignments.AuthorizeInstanceAuthor(c.Request.Context(), userID, input.SchoolID, input.CommunityID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	instance, err := h.assignments.CreateAssignmentInstance(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.Created(c, instance)
}

func (h *AssignmentHandler) GetInstance(c *gin.Context) {
	instance, err := h.assignments.GetInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, instance)
}

// UpdateGroups replaces the instance's group rosters
func (h *AssignmentHandler) UpdateGroups(c *gin.Context) {
	var req dto.UpdateGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	instance, err := h.assignments.UpdateAssignmentGroups(c.Request.Context(), c.Param("id"), req.Groups)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, instance)
}

func (h *AssignmentHandler) ActivateInstance(c *gin.Context) {
	instance, err := h.assignments.ActivateAssignmentInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, instance)
}

func (h *AssignmentHandler) ArchiveInstance(c *gin.Context) {
	instance, err := h.assignments.ArchiveAssignmentInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, instance)
}

// MyInstanceGroup returns the caller's group in the instance
func (h *AssignmentHandler) MyInstanceGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	group, err := h.assignments.GetUserGroupInInstance(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.MyGroupResponse{Group: group})
}

// Submit upserts the caller's own submission
func (h *AssignmentHandler) Submit(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	submission, err := h.assignments.SubmitAssignment(c.Request.Context(), services.SubmitAssignmentInput{
		InstanceID:     c.Param("id"),
		UserID:         userID,
		GroupID:        req.GroupID,
		Content:        req.Content,
		FileURL:        req.FileURL,
		SubmissionType: req.SubmissionType,
		Status:         req.Status,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, submission)
}

// SubmitInstanceGroup submits on behalf of the caller's whole group
func (h *AssignmentHandler) SubmitInstanceGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.GroupSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.assignments.SubmitGroupAssignment(c.Request.Context(), c.Param("id"), c.Param("group_id"), req.ToPayload(userID))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, result)
}

// InstanceGroupStatus returns the group's submission, or null before it submitted
func (h *AssignmentHandler) InstanceGroupStatus(c *gin.Context) {
	status, err := h.assignments.GroupSubmissionStatus(c.Request.Context(), c.Param("id"), c.Param("group_id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, gin.H{"submission": status})
}

// GradeInstanceGroup grades every member row of the group's submission
func (h *AssignmentHandler) GradeInstanceGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.assignments.GradeGroupSubmission(c.Request.Context(), c.Param("id"), c.Param("group_id"), services.GradeInput{
		Grade:    *req.Grade,
		Feedback: req.Feedback,
		GradedBy: userID,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, result)
}

func (h *AssignmentHandler) lessonRef(c *gin.Context) services.AssignmentRef {
	return services.AssignmentRef{Source: services.SourceLesson, ID: c.Param("id")}
}

// MyLessonGroup returns the caller's group in a lesson assignment
func (h *AssignmentHandler) MyLessonGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	group, err := h.groups.ResolveGroupFor(c.Request.Context(), userID, h.lessonRef(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.MyGroupResponse{Group: group})
}

// SubmitLessonGroup submits a lesson assignment for the caller's group
func (h *AssignmentHandler) SubmitLessonGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.GroupSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.groups.SubmitForGroup(c.Request.Context(), h.lessonRef(c), c.Param("group_id"), req.ToPayload(userID))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, result)
}
