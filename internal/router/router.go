package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/constants"
	apierrors "github.com/yukikurage/community-workspace-api/internal/errors"
	"github.com/yukikurage/community-workspace-api/internal/handlers"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/middleware"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP layer is built from
type Dependencies struct {
	DB            *gorm.DB
	SessionStore  sessions.Store
	JWTSecret     string
	Authz         *services.Authorizer
	Meetings      *services.MeetingService
	Deletion      *services.DeletionService
	Status        *services.StatusService
	Assignments   *services.AssignmentService
	Groups        *services.GroupMembership
	Notifications *services.NotificationService
	Avatars       *services.AvatarCache
	AI            *services.AIService
	Logger        *zap.Logger
}

// New builds the gin engine with every route registered
func New(deps Dependencies) *gin.Engine {
	logger := logging.OrNop(deps.Logger)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.HandleMethodNotAllowed = true
	r.NoMethod(apierrors.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Route not found")
	})
	if deps.SessionStore != nil {
		r.Use(sessions.Sessions(constants.SessionName, deps.SessionStore))
	}

	health := handlers.NewHealthHandler(deps.DB, logger)
	session := handlers.NewSessionHandler(logger)
	meetings := handlers.NewMeetingHandler(deps.Meetings, deps.Deletion, deps.Status, deps.AI, logger)
	items := handlers.NewItemHandler(deps.Status, logger)
	assignments := handlers.NewAssignmentHandler(deps.Assignments, deps.Groups, logger)
	notifications := handlers.NewNotificationHandler(deps.Notifications, deps.Authz, logger)
	avatars := handlers.NewAvatarHandler(deps.Avatars, logger)

	r.GET("/health", health.Health)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(deps.JWTSecret))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/session", session.CreateSession)
			auth.DELETE("/session", session.DeleteSession)
		}

		workspaces := api.Group("/workspaces/:id")
		{
			workspaces.GET("/meetings", meetings.ListMeetings)
			workspaces.POST("/meetings", meetings.CreateMeeting)
			workspaces.GET("/overdue", meetings.OverdueItems)
		}

		meetingAccess := middleware.RequireMeetingAccess(deps.Meetings, logger)
		meeting := api.Group("/meetings/:id")
		{
			meeting.GET("", meetingAccess, meetings.GetMeeting)
			meeting.DELETE("", meetings.DeleteMeeting)
			meeting.PUT("/documentation", meetings.UpdateDocumentation)
			meeting.POST("/archive", meetings.ArchiveMeeting)
			meeting.POST("/restore", meetings.RestoreMeeting)
			meeting.GET("/can-delete", meetings.CanDelete)
			meeting.POST("/suggest-items", meetingAccess, meetings.SuggestItems)
		}

		api.PATCH("/items/:kind/:id/status", items.UpdateStatus)

		me := api.Group("/me")
		{
			me.GET("/items", items.MyItems)
			me.PUT("/avatar", avatars.UpdateMine)
		}
		api.GET("/users/:id/avatar", avatars.Get)

		templates := api.Group("/assignment-templates")
		{
			templates.POST("", assignments.CreateTemplate)
			templates.GET("/:id", assignments.GetTemplate)
		}

		manager := middleware.RequireInstanceManager(deps.Assignments, logger)
		instances := api.Group("/assignment-instances")
		{
			instances.POST("", assignments.CreateInstance)
			instances.GET("/:id", assignments.GetInstance)
			instances.PUT("/:id/groups", manager, assignments.UpdateGroups)
			instances.POST("/:id/activate", manager, assignments.ActivateInstance)
			instances.POST("/:id/archive", manager, assignments.ArchiveInstance)
			instances.GET("/:id/my-group", assignments.MyInstanceGroup)
			instances.POST("/:id/submissions", assignments.Submit)
			instances.GET("/:id/groups/:group_id/submission", assignments.InstanceGroupStatus)
			instances.POST("/:id/groups/:group_id/submission", assignments.SubmitInstanceGroup)
			instances.POST("/:id/groups/:group_id/grade", manager, assignments.GradeInstanceGroup)
		}

		lessons := api.Group("/lesson-assignments")
		{
			lessons.GET("/:id/my-group", assignments.MyLessonGroup)
			lessons.POST("/:id/groups/:group_id/submission", assignments.SubmitLessonGroup)
		}

		notify := api.Group("/notifications")
		{
			notify.GET("", notifications.List)
			notify.POST("", notifications.Create)
			notify.POST("/mark-read", notifications.MarkRead)
			notify.POST("/mark-all-read", notifications.MarkAllRead)
		}
	}

	return r
}
