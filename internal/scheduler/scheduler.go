package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/services"
	"go.uber.org/zap"
)

const overdueJobTimeout = 2 * time.Minute

// OverdueUpdater flips past-due tasks and commitments to overdue
type OverdueUpdater interface {
	UpdateOverdueStatuses(ctx context.Context) (services.OverdueUpdate, error)
}

// MaintenanceScheduler runs periodic housekeeping jobs
type MaintenanceScheduler struct {
	cronEngine  *cron.Cron
	overdue     OverdueUpdater
	logger      *zap.Logger
	overdueSpec string
}

func NewMaintenanceScheduler(overdue OverdueUpdater, overdueSpec string, logger *zap.Logger) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cronEngine:  cron.New(cron.WithLocation(time.UTC)),
		overdue:     overdue,
		logger:      logging.OrNop(logger),
		overdueSpec: overdueSpec,
	}
}

// Start registers the jobs and starts the cron engine
func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.overdueSpec, s.RunOverdueJob); err != nil {
		return fmt.Errorf("failed to schedule overdue job %q: %w", s.overdueSpec, err)
	}
	s.cronEngine.Start()
	s.logger.Info("maintenance scheduler started", zap.String("overdue_spec", s.overdueSpec))
	return nil
}

// RunOverdueJob marks past-due items as overdue once
func (s *MaintenanceScheduler) RunOverdueJob() {
	ctx, cancel := context.WithTimeout(context.Background(), overdueJobTimeout)
	defer cancel()

	update, err := s.overdue.UpdateOverdueStatuses(ctx)
	if err != nil {
		s.logger.Error("overdue status update failed",
			zap.Int64("tasks", update.Tasks),
			zap.Int64("commitments", update.Commitments),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("overdue status update finished",
		zap.Int64("tasks", update.Tasks),
		zap.Int64("commitments", update.Commitments),
	)
}

// Stop stops the cron engine and waits for running jobs
func (s *MaintenanceScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("maintenance scheduler stopped")
}
