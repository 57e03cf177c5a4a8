package review

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
)

// RateFirstExposureInput holds the parameters for rating a word the learner
// sees for the first time.
type RateFirstExposureInput struct {
	VocabularyID uuid.UUID
	Rating       domain.FirstRating
}

// Validate checks all fields and collects all errors.
func (i *RateFirstExposureInput) Validate() error {
	var errs []domain.FieldError

	if i.VocabularyID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "vocabulary_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// RateReviewInput holds the parameters for rating a subsequent review.
type RateReviewInput struct {
	VocabularyID uuid.UUID
	Rating       domain.ReviewRating
}

// Validate checks all fields and collects all errors.
func (i *RateReviewInput) Validate() error {
	var errs []domain.FieldError

	if i.VocabularyID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "vocabulary_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// GetQueueInput holds the parameters for fetching the review queue.
// Zero-value Settings fall back to the engine defaults.
type GetQueueInput struct {
	Settings domain.ReviewSettings
}

// Validate checks all fields and collects all errors.
func (i *GetQueueInput) Validate() error {
	if i.Settings == (domain.ReviewSettings{}) {
		return nil
	}
	return i.Settings.Validate()
}

// SelectChatHintsInput holds the parameters for sampling hint candidates
// for one chat session.
type SelectChatHintsInput struct {
	SessionID uuid.UUID
	// Limit caps the sample size; 0 means the configured hint limit.
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *SelectChatHintsInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// GetRecordStatsInput holds the parameters for fetching per-item statistics.
type GetRecordStatsInput struct {
	VocabularyID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *GetRecordStatsInput) Validate() error {
	var errs []domain.FieldError

	if i.VocabularyID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "vocabulary_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
