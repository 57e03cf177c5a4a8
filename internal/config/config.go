package config

import (
	"time"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Review   ReviewConfig   `yaml:"review"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ReviewConfig holds the scheduling engine parameters.
type ReviewConfig struct {
	MasteredThresholdDays float64 `yaml:"mastered_threshold_days" env:"REVIEW_MASTERED_THRESHOLD_DAYS" env-default:"30"`
	ChatHintLimit         int     `yaml:"chat_hint_limit"         env:"REVIEW_CHAT_HINT_LIMIT"         env-default:"20"`
	MaxReviewsPerDay      int     `yaml:"max_reviews_per_day"     env:"REVIEW_MAX_REVIEWS_PER_DAY"     env-default:"100"`
	NewItemsPerDay        int     `yaml:"new_items_per_day"       env:"REVIEW_NEW_ITEMS_PER_DAY"       env-default:"20"`
	DesiredRetention      float64 `yaml:"desired_retention"       env:"REVIEW_DESIRED_RETENTION"       env-default:"0.9"`
}

// ToDomain converts the section into the pure domain shape the engine takes.
func (c ReviewConfig) ToDomain() domain.ReviewConfig {
	return domain.ReviewConfig{
		MasteredThresholdDays: c.MasteredThresholdDays,
		ChatHintLimit:         c.ChatHintLimit,
		Defaults: domain.ReviewSettings{
			MaxReviewsPerDay: c.MaxReviewsPerDay,
			NewItemsPerDay:   c.NewItemsPerDay,
			DesiredRetention: c.DesiredRetention,
		},
	}
}
