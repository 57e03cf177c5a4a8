package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir changes the working directory for the test and restores it on
// cleanup. Stand-in for t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("Chdir back: %v", err)
		}
	})
}

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

log:
  level: "debug"
  format: "text"

review:
  mastered_threshold_days: 45
  chat_hint_limit: 15
  max_reviews_per_day: 150
  new_items_per_day: 10
  desired_retention: 0.85
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.DSN != "postgres://u:p@localhost:5432/testdb" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("max_conns = %d, want 10", cfg.Database.MaxConns)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Review.MasteredThresholdDays != 45 {
		t.Errorf("mastered_threshold_days = %v, want 45", cfg.Review.MasteredThresholdDays)
	}
	if cfg.Review.ChatHintLimit != 15 {
		t.Errorf("chat_hint_limit = %d, want 15", cfg.Review.ChatHintLimit)
	}
	if cfg.Review.DesiredRetention != 0.85 {
		t.Errorf("desired_retention = %v, want 0.85", cfg.Review.DesiredRetention)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("REVIEW_MAX_REVIEWS_PER_DAY", "42")
	t.Setenv("DATABASE_MAX_CONN_LIFETIME", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Review.MaxReviewsPerDay != 42 {
		t.Errorf("max_reviews_per_day = %d, want 42 (env must win)", cfg.Review.MaxReviewsPerDay)
	}
	if cfg.Database.MaxConnLifetime != 2*time.Hour {
		t.Errorf("max_conn_lifetime = %v, want 2h", cfg.Database.MaxConnLifetime)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	validEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Review.MaxReviewsPerDay != 100 {
		t.Errorf("max_reviews_per_day default = %d, want 100", cfg.Review.MaxReviewsPerDay)
	}
	if cfg.Review.NewItemsPerDay != 20 {
		t.Errorf("new_items_per_day default = %d, want 20", cfg.Review.NewItemsPerDay)
	}
	if cfg.Review.DesiredRetention != 0.9 {
		t.Errorf("desired_retention default = %v, want 0.9", cfg.Review.DesiredRetention)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format default = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_MissingDSN(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_DSN is missing")
	}
}

func TestLoad_ExplicitPathMissingFile(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate_BadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero mastered threshold", func(c *Config) { c.Review.MasteredThresholdDays = 0 }},
		{"zero hint limit", func(c *Config) { c.Review.ChatHintLimit = 0 }},
		{"zero reviews per day", func(c *Config) { c.Review.MaxReviewsPerDay = 0 }},
		{"negative new per day", func(c *Config) { c.Review.NewItemsPerDay = -1 }},
		{"retention too high", func(c *Config) { c.Review.DesiredRetention = 1.0 }},
		{"retention too low", func(c *Config) { c.Review.DesiredRetention = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Database: DatabaseConfig{DSN: "postgres://u:p@localhost/db"},
				Log:      LogConfig{Level: "info", Format: "json"},
				Review: ReviewConfig{
					MasteredThresholdDays: 30,
					ChatHintLimit:         20,
					MaxReviewsPerDay:      100,
					NewItemsPerDay:        20,
					DesiredRetention:      0.9,
				},
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestReviewConfig_ToDomain(t *testing.T) {
	rc := ReviewConfig{
		MasteredThresholdDays: 30,
		ChatHintLimit:         20,
		MaxReviewsPerDay:      100,
		NewItemsPerDay:        20,
		DesiredRetention:      0.9,
	}

	d := rc.ToDomain()
	if d.MasteredThresholdDays != 30 || d.ChatHintLimit != 20 {
		t.Errorf("unexpected domain config: %+v", d)
	}
	if d.Defaults.MaxReviewsPerDay != 100 || d.Defaults.DesiredRetention != 0.9 {
		t.Errorf("unexpected domain defaults: %+v", d.Defaults)
	}
}
