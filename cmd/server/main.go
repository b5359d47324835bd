package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/community-workspace-api/internal/config"
	"github.com/yukikurage/community-workspace-api/internal/database"
	"github.com/yukikurage/community-workspace-api/internal/handlers"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"github.com/yukikurage/community-workspace-api/internal/router"
	"github.com/yukikurage/community-workspace-api/internal/scheduler"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"github.com/yukikurage/community-workspace-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, logger); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	db := database.GetDB()

	// Run migrations
	logger.Info("running database migrations")
	if err := database.MigrateDatabase(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Repositories
	meetingRepo := repository.NewMeetingRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	// Services
	var mailer services.Mailer = services.NewLogMailer(logger)
	if cfg.SendGridAPIKey != "" {
		mailer = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFrom)
	}

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	files := storage.NewOSStore(filepath.Clean(cfg.StorageRoot), cfg.StorageBucket)
	authz := services.NewAuthorizer(repository.NewCommunityRepository(db), repository.NewRoleRepository(db), logger)
	audit := services.NewAuditLogger(repository.NewAuditRepository(db), logger, cfg.AuditLog)
	notifications := services.NewNotificationService(repository.NewNotificationRepository(db))
	notifier := services.NewAssignmentNotifier(profileRepo, notifications, mailer, logger)
	status := services.NewStatusService(repository.NewTrackableRepository(db), authz, logger)
	groups := services.NewGroupMembership(assignmentRepo, repository.NewLessonAssignmentRepository(db), logger)

	avatars, err := services.NewAvatarCache(profileRepo, cfg.AvatarCacheSize, logger)
	if err != nil {
		logger.Fatal("failed to create avatar cache", zap.Error(err))
	}

	// Sessions live in Redis when configured, otherwise in signed cookies
	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Fatal("failed to create session store", zap.Error(err))
	}

	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatal("failed to register validators", zap.Error(err))
	}

	maintenance := scheduler.NewMaintenanceScheduler(status, cfg.OverdueCron, logger)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer maintenance.Stop()

	r := router.New(router.Dependencies{
		DB:            db,
		SessionStore:  store,
		JWTSecret:     cfg.JWTSecret,
		Authz:         authz,
		Meetings:      services.NewMeetingService(meetingRepo, authz, audit, notifier, logger),
		Deletion:      services.NewDeletionService(meetingRepo, files, authz, audit, logger),
		Status:        status,
		Assignments:   services.NewAssignmentService(assignmentRepo, groups, authz, logger),
		Groups:        groups,
		Notifications: notifications,
		Avatars:       avatars,
		AI:            aiService,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			"", // username (empty for default user)
			"", // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
