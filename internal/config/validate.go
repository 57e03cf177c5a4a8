package config

import (
	"fmt"
	"slices"
	"strings"
)

var logLevels = []string{"debug", "info", "warn", "error"}
var logFormats = []string{"json", "text"}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of %v (got %q)", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format must be one of %v (got %q)", logFormats, c.Log.Format)
	}

	if err := c.Review.validate(); err != nil {
		return fmt.Errorf("review: %w", err)
	}

	return nil
}

func (r *ReviewConfig) validate() error {
	if r.MasteredThresholdDays <= 0 {
		return fmt.Errorf("mastered_threshold_days must be > 0 (got %v)", r.MasteredThresholdDays)
	}
	if r.ChatHintLimit < 1 {
		return fmt.Errorf("chat_hint_limit must be >= 1 (got %d)", r.ChatHintLimit)
	}
	if r.MaxReviewsPerDay < 1 {
		return fmt.Errorf("max_reviews_per_day must be >= 1 (got %d)", r.MaxReviewsPerDay)
	}
	if r.NewItemsPerDay < 0 {
		return fmt.Errorf("new_items_per_day must be >= 0 (got %d)", r.NewItemsPerDay)
	}
	if r.DesiredRetention <= 0 || r.DesiredRetention >= 1 {
		return fmt.Errorf("desired_retention must be in (0, 1) (got %v)", r.DesiredRetention)
	}

	return nil
}
