package domain

// ReviewSettings bounds a single scheduling query. Settings are supplied per
// query and have no lifecycle of their own.
type ReviewSettings struct {
	MaxReviewsPerDay int
	NewItemsPerDay   int
	DesiredRetention float64
}

// DefaultReviewSettings returns the engine defaults.
func DefaultReviewSettings() ReviewSettings {
	return ReviewSettings{
		MaxReviewsPerDay: 100,
		NewItemsPerDay:   20,
		DesiredRetention: 0.9,
	}
}

// Validate checks all fields and collects all errors.
func (s ReviewSettings) Validate() error {
	var errs []FieldError

	if s.MaxReviewsPerDay < 1 {
		errs = append(errs, FieldError{Field: "max_reviews_per_day", Message: "must be >= 1"})
	}
	if s.NewItemsPerDay < 0 {
		errs = append(errs, FieldError{Field: "new_items_per_day", Message: "must be >= 0"})
	}
	if s.DesiredRetention <= 0 || s.DesiredRetention >= 1 {
		errs = append(errs, FieldError{Field: "desired_retention", Message: "must be in (0, 1)"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// ReviewConfig is the engine-level configuration, fixed at service
// construction. Per-query knobs live in ReviewSettings instead.
type ReviewConfig struct {
	// MasteredThresholdDays is the stability at which an item counts as
	// mastered for queue statistics.
	MasteredThresholdDays float64
	// ChatHintLimit caps how many hint candidates one session may hold.
	ChatHintLimit int
	// Defaults applies when a query passes zero-value settings.
	Defaults ReviewSettings
}

// DefaultReviewConfig returns the engine defaults.
func DefaultReviewConfig() ReviewConfig {
	return ReviewConfig{
		MasteredThresholdDays: 30,
		ChatHintLimit:         20,
		Defaults:              DefaultReviewSettings(),
	}
}

// Validate checks all fields and collects all errors.
func (c ReviewConfig) Validate() error {
	var errs []FieldError

	if c.MasteredThresholdDays <= 0 {
		errs = append(errs, FieldError{Field: "mastered_threshold_days", Message: "must be > 0"})
	}
	if c.ChatHintLimit < 1 {
		errs = append(errs, FieldError{Field: "chat_hint_limit", Message: "must be >= 1"})
	}
	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, FieldError{Field: "defaults", Message: err.Error()})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
