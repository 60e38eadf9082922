package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default values used when the environment does not provide one
const (
	DefaultHTTPAddr              = ":8080"
	DefaultDBType                = "sqlite"
	DefaultDBPath                = "data/langportal.db"
	DefaultJWTSecret             = "dev-secret-change-me"
	DefaultNotificationStartHour = 4
	DefaultNotificationEndHour   = 18
	DefaultReminderInterval      = time.Hour
	DefaultRateLimitRPS          = 20
	DefaultRateLimitBurst        = 40
	DefaultLogDir                = "logs"
)

// Config is the full process configuration
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
	Telegram  TelegramConfig
	Log       LogConfig
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
}

// DatabaseConfig selects the SQL backend
type DatabaseConfig struct {
	Type string // "sqlite" or "postgres"
	Path string // sqlite file, ":memory:" allowed
	URL  string // postgres DSN
}

// AuthConfig holds the bearer token settings
type AuthConfig struct {
	JWTSecret string
}

// SchedulerConfig configures due-review reminders
type SchedulerConfig struct {
	Enabled   bool
	StartHour int
	EndHour   int
	Interval  time.Duration
}

// TelegramConfig enables the Telegram notifier when Token is set
type TelegramConfig struct {
	Token string
}

// LogConfig controls the rotating log file
type LogConfig struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:           getString("HTTP_ADDR", DefaultHTTPAddr),
			RateLimitRPS:   getFloat("RATE_LIMIT_RPS", DefaultRateLimitRPS),
			RateLimitBurst: getInt("RATE_LIMIT_BURST", DefaultRateLimitBurst),
		},
		Database: DatabaseConfig{
			Type: strings.ToLower(getString("DB_TYPE", DefaultDBType)),
			Path: getString("DB_PATH", DefaultDBPath),
			URL:  os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret: getString("JWT_SECRET", DefaultJWTSecret),
		},
		Scheduler: SchedulerConfig{
			Enabled:   os.Getenv("ENABLE_SCHEDULER") != "false",
			StartHour: getInt("NOTIFICATION_START_HOUR", DefaultNotificationStartHour),
			EndHour:   getInt("NOTIFICATION_END_HOUR", DefaultNotificationEndHour),
			Interval:  getDuration("REMINDER_INTERVAL", DefaultReminderInterval),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		Log: LogConfig{
			Dir:        getString("LOG_DIR", DefaultLogDir),
			MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no safe fallback
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH must be set for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL must be set for postgres")
		}
		if c.Auth.JWTSecret == DefaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set when running against postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.Database.Type)
	}

	if c.Scheduler.StartHour < 0 || c.Scheduler.StartHour > 23 {
		return fmt.Errorf("NOTIFICATION_START_HOUR out of range: %d", c.Scheduler.StartHour)
	}
	if c.Scheduler.EndHour < 0 || c.Scheduler.EndHour > 23 {
		return fmt.Errorf("NOTIFICATION_END_HOUR out of range: %d", c.Scheduler.EndHour)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive")
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
