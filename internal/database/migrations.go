package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// secondaryIndexes are the composite indexes that struct tags do not declare
var secondaryIndexes = []index{
	// Meeting listing
	{"community_meetings", "idx_meetings_workspace_active_date", "workspace_id, is_active, meeting_date"},

	// Overdue maintenance scans
	{"meeting_tasks", "idx_meeting_tasks_status_due", "status, due_date"},
	{"meeting_commitments", "idx_meeting_commitments_status_due", "status, due_date"},

	// Role lookups
	{"user_roles", "idx_user_roles_user_type", "user_id, role_type, is_active"},

	// Notification inbox
	{"user_notifications", "idx_user_notifications_user_read", "user_id, read_at"},

	// Group submission reads
	{"group_assignment_submissions", "idx_group_submissions_group", "assignment_id, group_id"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	for _, idx := range secondaryIndexes {
		if !db.Migrator().HasTable(idx.table) {
			log.Warn("table missing, skipping index", zap.String("table", idx.table), zap.String("index", idx.name))
			continue
		}

		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table), zap.String("columns", idx.columns))
	}

	return nil
}

// MigrateDatabase runs schema migrations followed by index creation
func MigrateDatabase(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
