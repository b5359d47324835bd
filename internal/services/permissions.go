package services

import (
	"context"

	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"go.uber.org/zap"
)

// Authorizer answers permission questions for meetings, items, assignments
// and notifications. Lookup failures are logged
// and answered with false.
type Authorizer struct {
	communities repository.CommunityRepository
	roles       repository.RoleRepository
	logger      *zap.Logger
}

func NewAuthorizer(communities repository.CommunityRepository, roles repository.RoleRepository, logger *zap.Logger) *Authorizer {
	return &Authorizer{communities: communities, roles: roles, logger: logging.OrNop(logger)}
}

func (a *Authorizer) hasRole(ctx context.Context, userID string, role models.RoleType) bool {
	ok, err := a.roles.HasRole(ctx, userID, role)
	if err != nil {
		a.logger.Warn("role lookup failed", zap.String("user_id", userID), zap.String("role", string(role)), zap.Error(err))
		return false
	}
	return ok
}

func (a *Authorizer) isCommunityLeader(ctx context.Context, userID string, communityID string) bool {
	ok, err := a.roles.HasCommunityRole(ctx, userID, models.RoleCommunityLeader, communityID)
	if err != nil {
		a.logger.Warn("community role lookup failed", zap.String("user_id", userID), zap.String("community_id", communityID), zap.Error(err))
		return false
	}
	return ok
}

func (a *Authorizer) workspaceCommunity(ctx context.Context, workspaceID string) *models.Community {
	workspace, err := a.communities.FindWorkspace(ctx, workspaceID)
	if err != nil {
		a.logger.Warn("workspace lookup failed", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil
	}
	community, err := a.communities.FindCommunity(ctx, workspace.CommunityID)
	if err != nil {
		a.logger.Warn("community lookup failed", zap.String("community_id", workspace.CommunityID), zap.Error(err))
		return nil
	}
	return community
}

// CanManageMeetings reports whether the user may create and document meetings
// in the workspace: admins, leaders of the owning community and consultants
// of its school
func (a *Authorizer) CanManageMeetings(ctx context.Context, userID, workspaceID string) bool {
	if userID == "" {
		return false
	}
	if a.hasRole(ctx, userID, models.RoleAdmin) {
		return true
	}

	community := a.workspaceCommunity(ctx, workspaceID)
	if community == nil {
		return false
	}
	if a.isCommunityLeader(ctx, userID, community.ID) {
		return true
	}
	if community.SchoolID == nil {
		return false
	}
	return a.hasSchoolRole(ctx, userID, models.RoleConsultant, *community.SchoolID)
}

// CanDeleteMeeting checks, in order and stopping at the first match, whether
// the user created the meeting, is an admin, or leads the community that owns
// the meeting's workspace
func (a *Authorizer) CanDeleteMeeting(ctx context.Context, userID string, meeting *models.Meeting) bool {
	if userID == "" || meeting == nil {
		return false
	}
	if meeting.CreatedBy == userID {
		return true
	}
	if a.hasRole(ctx, userID, models.RoleAdmin) {
		return true
	}

	workspace, err := a.communities.FindWorkspace(ctx, meeting.WorkspaceID)
	if err != nil {
		a.logger.Warn("workspace lookup failed", zap.String("workspace_id", meeting.WorkspaceID), zap.Error(err))
		return false
	}
	return a.isCommunityLeader(ctx, userID, workspace.CommunityID)
}

func (a *Authorizer) hasSchoolRole(ctx context.Context, userID string, role models.RoleType, schoolID string) bool {
	ok, err := a.roles.HasSchoolRole(ctx, userID, role, schoolID)
	if err != nil {
		a.logger.Warn("school role lookup failed", zap.String("user_id", userID), zap.String("school_id", schoolID), zap.Error(err))
		return false
	}
	return ok
}

// CanViewMeeting reports whether the user may read the meeting: its creator,
// its attendees and whoever may manage meetings in its workspace
func (a *Authorizer) CanViewMeeting(ctx context.Context, userID string, meeting *MeetingWithDetails) bool {
	if userID == "" || meeting == nil {
		return false
	}
	if meeting.CreatedBy == userID {
		return true
	}
	for _, attendee := range meeting.Attendees {
		if attendee.UserID == userID {
			return true
		}
	}
	return a.CanManageMeetings(ctx, userID, meeting.WorkspaceID)
}

// CanUpdateItem reports whether the user may change a task or commitment:
// its assignee, the meeting creator and meeting managers of the workspace
func (a *Authorizer) CanUpdateItem(ctx context.Context, userID string, owner *repository.ItemOwnership) bool {
	if userID == "" || owner == nil {
		return false
	}
	if owner.AssignedTo != nil && *owner.AssignedTo == userID {
		return true
	}
	if owner.MeetingCreatedBy == userID {
		return true
	}
	return a.CanManageMeetings(ctx, userID, owner.WorkspaceID)
}

// CanAuthorTemplates reports whether the user may write assignment templates
func (a *Authorizer) CanAuthorTemplates(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	for _, role := range []models.RoleType{models.RoleAdmin, models.RoleConsultant, models.RoleTeacher} {
		if a.hasRole(ctx, userID, role) {
			return true
		}
	}
	return false
}

// CanAuthorInstance reports whether the user may open an assignment instance
// in the given school or community. Unscoped instances are admin only.
func (a *Authorizer) CanAuthorInstance(ctx context.Context, userID string, schoolID, communityID *string) bool {
	if userID == "" {
		return false
	}
	if a.hasRole(ctx, userID, models.RoleAdmin) {
		return true
	}
	if schoolID != nil {
		if a.hasSchoolRole(ctx, userID, models.RoleConsultant, *schoolID) || a.hasSchoolRole(ctx, userID, models.RoleTeacher, *schoolID) {
			return true
		}
	}
	return communityID != nil && a.isCommunityLeader(ctx, userID, *communityID)
}

// CanManageAssignment reports whether the user may change rosters, move the
// status of or grade an instance: its creator and its authors
func (a *Authorizer) CanManageAssignment(ctx context.Context, userID string, instance *models.AssignmentInstance) bool {
	if userID == "" || instance == nil {
		return false
	}
	if instance.CreatedBy == userID {
		return true
	}
	return a.CanAuthorInstance(ctx, userID, instance.SchoolID, instance.CommunityID)
}

// CanNotify reports whether the user may send a notification to recipientID.
// Anyone may notify themselves.
func (a *Authorizer) CanNotify(ctx context.Context, userID, recipientID string) bool {
	if userID == "" {
		return false
	}
	return userID == recipientID || a.hasRole(ctx, userID, models.RoleAdmin)
}
