package database

import (
	"fmt"

	"github.com/yukikurage/community-workspace-api/internal/config"
	"github.com/yukikurage/community-workspace-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Dialector builds the gorm dialector for the configured driver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBSSLMode,
		)
		pg := postgres.Config{DSN: dsn}
		if cfg.PostgresDriver == "pq" {
			// registered by github.com/lib/pq
			pg.DriverName = "postgres"
		}
		return postgres.New(pg), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
}

func Connect(cfg *config.Config, log *zap.Logger) error {
	dialector, err := Dialector(cfg)
	if err != nil {
		return err
	}

	level := logger.Info
	if cfg.IsProduction() {
		level = logger.Warn
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connection established", zap.String("driver", cfg.DBDriver))
	return nil
}

// AllModels lists every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Community{},
		&models.Workspace{},
		&models.UserRole{},
		&models.Meeting{},
		&models.Agreement{},
		&models.Commitment{},
		&models.Task{},
		&models.Attendee{},
		&models.Attachment{},
		&models.SimpleMeeting{},
		&models.AssignmentTemplate{},
		&models.AssignmentInstance{},
		&models.AssignmentSubmission{},
		&models.GroupAssignmentSubmission{},
		&models.LessonAssignment{},
		&models.Notification{},
		&models.AuditEntry{},
	}
}

func GetDB() *gorm.DB {
	return DB
}
