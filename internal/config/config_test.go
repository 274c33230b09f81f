package config

import (
	"testing"
	"time"
)

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func validConfig(env string) Config {
	return Config{
		App:   AppConfig{Env: env, Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "campus", SSLMode: "disable"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret", JWTIssuer: "campus", JWTAudience: "campus-api"},
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig("production")
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validConfig("local")
	c.DB.SSLMode = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_AuditDefaults(t *testing.T) {
	c := validConfig("local")
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Audit.LogsDir != "logs" {
		t.Fatalf("expected default logs dir, got %q", c.Audit.LogsDir)
	}
	if c.Audit.RetentionDays != 90 {
		t.Fatalf("expected 90-day retention default, got %d", c.Audit.RetentionDays)
	}
	if c.Audit.CleanupInterval != 24*time.Hour {
		t.Fatalf("expected daily cleanup default, got %v", c.Audit.CleanupInterval)
	}
	if c.Ingest.RateLimitPerMinute != 60 {
		t.Fatalf("expected default ingest rate limit, got %d", c.Ingest.RateLimitPerMinute)
	}
}

func TestValidate_EscalationThresholdBounds(t *testing.T) {
	c := validConfig("local")
	c.Audit.EscalationThreshold = 101
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range threshold")
	}

	c = validConfig("local")
	c.Audit.EscalationThreshold = 75
	if err := c.Validate(); err != nil {
		t.Fatalf("expected 75 to be accepted, got %v", err)
	}
}
