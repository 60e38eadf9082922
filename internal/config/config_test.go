package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_TYPE", "DB_PATH", "JWT_SECRET", "ENABLE_SCHEDULER",
		"NOTIFICATION_START_HOUR", "NOTIFICATION_END_HOUR", "REMINDER_INTERVAL", "RATE_LIMIT_RPS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.Path != DefaultDBPath {
		t.Errorf("database = %+v", cfg.Database)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("scheduler should be enabled by default")
	}
	if cfg.Scheduler.Interval != time.Hour {
		t.Errorf("interval = %v", cfg.Scheduler.Interval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "SQLite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("ENABLE_SCHEDULER", "false")
	t.Setenv("NOTIFICATION_START_HOUR", "7")
	t.Setenv("REMINDER_INTERVAL", "15m")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.Path != ":memory:" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Scheduler.Enabled {
		t.Error("scheduler should be disabled")
	}
	if cfg.Scheduler.StartHour != 7 {
		t.Errorf("start hour = %d", cfg.Scheduler.StartHour)
	}
	if cfg.Scheduler.Interval != 15*time.Minute {
		t.Errorf("interval = %v", cfg.Scheduler.Interval)
	}
	if cfg.HTTP.RateLimitRPS != DefaultRateLimitRPS {
		t.Errorf("rps should fall back to default, got %v", cfg.HTTP.RateLimitRPS)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database:  DatabaseConfig{Type: "sqlite", Path: "x.db"},
			Auth:      AuthConfig{JWTSecret: DefaultJWTSecret},
			Scheduler: SchedulerConfig{StartHour: 4, EndHour: 18, Interval: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Type = "mysql" }, true},
		{"postgres without url", func(c *Config) { c.Database.Type = "postgres" }, true},
		{"postgres with default secret", func(c *Config) {
			c.Database.Type = "postgres"
			c.Database.URL = "postgres://localhost/db"
		}, true},
		{"postgres ok", func(c *Config) {
			c.Database.Type = "postgres"
			c.Database.URL = "postgres://localhost/db"
			c.Auth.JWTSecret = "s3cret"
		}, false},
		{"hour out of range", func(c *Config) { c.Scheduler.EndHour = 24 }, true},
		{"zero interval", func(c *Config) { c.Scheduler.Interval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
