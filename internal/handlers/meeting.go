package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/dto"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/middleware"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"github.com/yukikurage/community-workspace-api/internal/utils"
	"go.uber.org/zap"
)

// MeetingHandler serves meeting documentation and lifecycle endpoints
type MeetingHandler struct {
	meetings *services.MeetingService
	deletion *services.DeletionService
	status   *services.StatusService
	ai       *services.AIService
	logger   *zap.Logger
}

func NewMeetingHandler(
	meetings *services.MeetingService,
	deletion *services.DeletionService,
	status *services.StatusService,
	ai *services.AIService,
	logger *zap.Logger,
) *MeetingHandler {
	return &MeetingHandler{
		meetings: meetings,
		deletion: deletion,
		status:   status,
		ai:       ai,
		logger:   logging.OrNop(logger),
	}
}

// ListMeetings returns a page of the workspace's active meetings.
// Filters: status (comma separated), from, to (RFC3339), search, sort_by,
// sort_desc, include_inactive.
func (h *MeetingHandler) ListMeetings(c *gin.Context) {
	input := services.ListMeetingsInput{
		Search: c.Query("search"),
		SortBy: c.Query("sort_by"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			input.Statuses = append(input.Statuses, models.MeetingStatus(strings.TrimSpace(s)))
		}
	}
	for key, target := range map[string]**time.Time{"from": &input.DateFrom, "to": &input.DateTo} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid "+key+" date, expected RFC3339")
			return
		}
		*target = &t
	}
	for key, target := range map[string]*bool{"sort_desc": &input.SortDesc, "include_inactive": &input.IncludeInactive} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid "+key)
			return
		}
		*target = v
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	meetings, total, err := h.meetings.ListMeetings(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.MeetingListResponse{
		Meetings:   meetings,
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

// CreateMeeting creates a meeting with its documentation in the workspace
func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.meetings.CreateMeetingWithDocumentation(c.Request.Context(), req.ToInput(c.Param("id"), userID))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.Created(c, dto.ToMeetingWriteResponse(result))
}

// GetMeeting returns the meeting loaded by RequireMeetingAccess
func (h *MeetingHandler) GetMeeting(c *gin.Context) {
	meeting, ok := middleware.GetMeeting(c)
	if !ok {
		apierrors.NotFound(c, "Meeting not found")
		return
	}
	apierrors.OK(c, meeting)
}

// UpdateDocumentation replaces the meeting's written record
func (h *MeetingHandler) UpdateDocumentation(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.UpdateDocumentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.meetings.UpdateMeetingDocumentation(c.Request.Context(), c.Param("id"), services.UpdateDocumentationInput{
		UserID:        userID,
		Status:        req.Status,
		Documentation: req.ToDocumentation(),
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, dto.ToMeetingWriteResponse(result))
}

// DeleteMeeting permanently deletes the meeting and everything attached to it
func (h *MeetingHandler) DeleteMeeting(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.DeleteMeetingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result := h.deletion.DeleteMeeting(c.Request.Context(), c.Param("id"), services.DeleteOptions{
		UserID: userID,
		Reason: req.Reason,
	})
	if !result.Success {
		respondMeetingFailure(c, result.Errors, result)
		return
	}
	apierrors.OK(c, result)
}

// ArchiveMeeting hides the meeting from listings
func (h *MeetingHandler) ArchiveMeeting(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	h.respondMutation(c, h.deletion.SoftDeleteMeeting(c.Request.Context(), c.Param("id"), userID))
}

// RestoreMeeting brings an archived meeting back
func (h *MeetingHandler) RestoreMeeting(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	h.respondMutation(c, h.deletion.RestoreMeeting(c.Request.Context(), c.Param("id"), userID))
}

func (h *MeetingHandler) respondMutation(c *gin.Context, result services.MutationResult) {
	if !result.Success {
		respondMeetingFailure(c, []string{result.Error}, result)
		return
	}
	apierrors.OK(c, result)
}

// respondMeetingFailure picks the status for a failed meeting mutation.
// Zero-row mutations report insufficient permissions.
func respondMeetingFailure(c *gin.Context, errs []string, details interface{}) {
	for _, msg := range errs {
		if msg == services.MsgMeetingNotFound {
			apierrors.NotFound(c, msg)
			return
		}
	}
	for _, msg := range errs {
		if strings.Contains(strings.ToLower(msg), "insufficient permissions") {
			apierrors.RespondWithError(c, http.StatusForbidden, apierrors.NewAPIErrorWithDetails(
				apierrors.ErrCodeInsufficientPermissions, msg, details))
			return
		}
	}
	message := "Operation failed"
	if len(errs) > 0 {
		message = errs[0]
	}
	apierrors.OperationFailed(c, message, details)
}

// CanDelete reports whether the caller may delete the meeting
func (h *MeetingHandler) CanDelete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	apierrors.OK(c, dto.CanDeleteResponse{
		CanDelete: h.deletion.CanDeleteMeeting(c.Request.Context(), userID, c.Param("id")),
	})
}

// SuggestItems drafts tasks and commitments from the meeting's notes
func (h *MeetingHandler) SuggestItems(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	meeting, ok := middleware.GetMeeting(c)
	if !ok {
		apierrors.NotFound(c, "Meeting not found")
		return
	}
	if meeting.CreatedBy != userID && !h.meetings.CanManageMeetings(c.Request.Context(), userID, meeting.WorkspaceID) {
		apierrors.InsufficientPermissions(c, "")
		return
	}

	var req dto.SuggestItemsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	notes := req.Notes
	if strings.TrimSpace(notes) == "" && meeting.Notes != nil {
		notes = *meeting.Notes
	}

	items, err := h.ai.SuggestItems(c.Request.Context(), notes)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, gin.H{"items": items})
}

// OverdueItems lists the workspace's overdue tasks and commitments,
// optionally for one assignee
func (h *MeetingHandler) OverdueItems(c *gin.Context) {
	workspaceID := c.Param("id")
	var assignee *string
	if raw := c.Query("user_id"); raw != "" {
		assignee = &raw
	}

	items, err := h.status.OverdueItems(c.Request.Context(), &workspaceID, assignee)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	apierrors.OK(c, gin.H{"items": dto.ToTrackedItemDTOs(items)})
}
