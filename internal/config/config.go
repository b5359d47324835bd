package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"github.com/yukikurage/community-workspace-api/internal/constants"
)

type Config struct {
	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	PostgresDriver  string
	SQLitePath      string
	RedisHost       string
	RedisPort       string
	SessionSecret   string
	JWTSecret       string
	GinMode         string
	ServerAddr      string
	LogLevel        string
	OpenAIAPIKey    string
	StorageRoot     string
	StorageBucket   string
	SendGridAPIKey  string
	MailFrom        string
	MailFromName    string
	OverdueCron     string
	AuditLog        string
	AvatarCacheSize int
}

// Load reads configuration from the environment, optionally seeded by a .env file.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "workspace")
	v.SetDefault("DB_PASSWORD", "workspace")
	v.SetDefault("DB_NAME", "community_workspace")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PG_DRIVER", "pgx")
	v.SetDefault("SQLITE_PATH", "workspace.db")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_SECRET", "default-secret-key-change-me")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("STORAGE_ROOT", "./data")
	v.SetDefault("STORAGE_BUCKET", "meeting-documents")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "noreply@localhost")
	v.SetDefault("MAIL_FROM_NAME", "Community Workspace")
	v.SetDefault("OVERDUE_CRON", constants.DefaultOverdueCron)
	v.SetDefault("AUDIT_LOG", "all")
	v.SetDefault("AVATAR_CACHE_SIZE", constants.DefaultAvatarCacheSize)
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		DBSSLMode:       v.GetString("DB_SSLMODE"),
		PostgresDriver:  strings.ToLower(v.GetString("DB_PG_DRIVER")),
		SQLitePath:      v.GetString("SQLITE_PATH"),
		RedisHost:       v.GetString("REDIS_HOST"),
		RedisPort:       v.GetString("REDIS_PORT"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		GinMode:         v.GetString("GIN_MODE"),
		ServerAddr:      v.GetString("SERVER_ADDR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
		StorageRoot:     v.GetString("STORAGE_ROOT"),
		StorageBucket:   v.GetString("STORAGE_BUCKET"),
		SendGridAPIKey:  v.GetString("SENDGRID_API_KEY"),
		MailFrom:        v.GetString("MAIL_FROM"),
		MailFromName:    v.GetString("MAIL_FROM_NAME"),
		OverdueCron:     v.GetString("OVERDUE_CRON"),
		AuditLog:        strings.ToLower(v.GetString("AUDIT_LOG")),
		AvatarCacheSize: v.GetInt("AVATAR_CACHE_SIZE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.PostgresDriver {
	case "pgx", "pq":
	default:
		return fmt.Errorf("unsupported DB_PG_DRIVER %q", c.PostgresDriver)
	}

	switch c.AuditLog {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("unsupported AUDIT_LOG %q", c.AuditLog)
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in release mode")
	}

	if _, err := cron.ParseStandard(c.OverdueCron); err != nil {
		return fmt.Errorf("invalid OVERDUE_CRON %q: %w", c.OverdueCron, err)
	}

	if c.AvatarCacheSize <= 0 {
		c.AvatarCacheSize = constants.DefaultAvatarCacheSize
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
