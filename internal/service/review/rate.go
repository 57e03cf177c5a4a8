package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
	"github.com/heartmarshall/mykorean-backend/internal/service/review/memory"
	"github.com/heartmarshall/mykorean-backend/pkg/ctxutil"
)

// RateFirstExposure records the learner's perceived difficulty for a word
// seen for the first time and creates its review record.
func (s *Service) RateFirstExposure(ctx context.Context, input RateFirstExposureInput) (*domain.ReviewRecord, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNoLearner
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	item, err := s.getVocabularyItem(ctx, input.VocabularyID)
	if err != nil {
		return nil, err
	}

	existing, found, err := s.loadRecord(ctx, learnerID, input.VocabularyID)
	if err != nil {
		return nil, err
	}
	if found && !existing.IsNew() {
		return nil, fmt.Errorf("record already has %d reviews, expected a review rating: %w",
			existing.TotalReviews, domain.ErrInvalidRating)
	}

	rec, err := s.createRecord(ctx, learnerID, item, input.Rating, input.Rating.String())
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "first exposure rated",
		slog.String("learner_id", learnerID.String()),
		slog.String("vocabulary_id", item.ID.String()),
		slog.String("rating", input.Rating.String()),
		slog.Float64("stability", rec.Stability),
	)

	return rec, nil
}

// RateReview records a recall rating for a previously studied word and
// advances its memory state. A word that somehow has no record yet is
// initialized through the first-exposure rule instead of failing.
func (s *Service) RateReview(ctx context.Context, input RateReviewInput) (*domain.ReviewRecord, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNoLearner
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	if !input.Rating.IsValid() {
		return nil, fmt.Errorf("review rating %q: %w", input.Rating, domain.ErrInvalidRating)
	}

	item, err := s.getVocabularyItem(ctx, input.VocabularyID)
	if err != nil {
		return nil, err
	}

	rec, found, err := s.loadRecord(ctx, learnerID, input.VocabularyID)
	if err != nil {
		return nil, err
	}
	if !found || rec.IsNew() {
		created, err := s.createRecord(ctx, learnerID, item, firstRatingFor(input.Rating), input.Rating.String())
		if err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "review rated without record, initialized from first-exposure rule",
			slog.String("learner_id", learnerID.String()),
			slog.String("vocabulary_id", item.ID.String()),
			slog.String("rating", input.Rating.String()),
		)
		return created, nil
	}

	now := s.now()

	if rec.LastReviewDate == nil {
		return nil, fmt.Errorf("record with %d reviews has no last review date: %w",
			rec.TotalReviews, domain.ErrInvalidState)
	}
	elapsedDays := now.Sub(*rec.LastReviewDate).Hours() / 24

	retr, err := memory.Retrievability(rec.Stability, elapsedDays)
	if err != nil {
		return nil, err
	}

	newStability := memory.NextStability(s.weights, rec.Stability, rec.Difficulty, retr, input.Rating)
	newDifficulty := memory.NextDifficulty(s.weights, rec.Difficulty, input.Rating)

	updated := rec.Clone()
	updated.Stability = newStability
	updated.Difficulty = newDifficulty
	updated.TotalReviews++
	if input.Rating == domain.ReviewRatingAgain {
		updated.Lapses++
	}
	updated.LastReviewDate = &now
	updated.NextReviewDate = now.AddDate(0, 0, memory.IntervalDays(newStability))
	updated.History = append(updated.History, domain.ReviewEntry{
		ReviewedAt:          now,
		Rating:              input.Rating.String(),
		ResultingStability:  newStability,
		ResultingDifficulty: newDifficulty,
	})

	if err := s.records.Save(ctx, learnerID, updated.OriginDayID, updated); err != nil {
		return nil, fmt.Errorf("save review record: %w", err)
	}

	s.log.InfoContext(ctx, "review rated",
		slog.String("learner_id", learnerID.String()),
		slog.String("vocabulary_id", item.ID.String()),
		slog.String("rating", input.Rating.String()),
		slog.Float64("retrievability", retr),
		slog.Float64("stability", newStability),
		slog.Float64("difficulty", newDifficulty),
	)

	return &updated, nil
}

// createRecord builds and persists the initial record for an unstudied word.
// ratingLabel is what goes into the history, which may be the review-scale
// label when the record is synthesized lazily.
func (s *Service) createRecord(
	ctx context.Context,
	learnerID uuid.UUID,
	item domain.VocabularyItem,
	rating domain.FirstRating,
	ratingLabel string,
) (*domain.ReviewRecord, error) {
	stability, difficulty, intervalDays, err := memory.FirstExposure(rating)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := domain.ReviewRecord{
		VocabularyID:   item.ID,
		OriginDayID:    item.OriginDayID,
		Stability:      stability,
		Difficulty:     difficulty,
		TotalReviews:   1,
		LastReviewDate: &now,
		NextReviewDate: now.AddDate(0, 0, intervalDays),
		History: []domain.ReviewEntry{{
			ReviewedAt:          now,
			Rating:              ratingLabel,
			ResultingStability:  stability,
			ResultingDifficulty: difficulty,
		}},
	}

	if err := s.records.Save(ctx, learnerID, rec.OriginDayID, rec); err != nil {
		return nil, fmt.Errorf("save review record: %w", err)
	}
	return &rec, nil
}

// getVocabularyItem loads the item backing an id, mapping a missing row to
// ErrUnknownVocabulary.
func (s *Service) getVocabularyItem(ctx context.Context, id uuid.UUID) (domain.VocabularyItem, error) {
	item, err := s.vocab.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.VocabularyItem{}, fmt.Errorf("vocabulary %s: %w", id, domain.ErrUnknownVocabulary)
	}
	if err != nil {
		return domain.VocabularyItem{}, fmt.Errorf("get vocabulary item: %w", err)
	}
	return item, nil
}

// loadRecord fetches and resolves the stored record for one word.
// found is false when the word has never been rated.
func (s *Service) loadRecord(ctx context.Context, learnerID, vocabularyID uuid.UUID) (*domain.ReviewRecord, bool, error) {
	stored, err := s.records.Get(ctx, learnerID, vocabularyID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get review record: %w", err)
	}

	rec, err := s.resolve(ctx, stored)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// resolve unpacks a stored variant, migrating legacy rows and clamping
// out-of-range state before anyone computes with it.
func (s *Service) resolve(ctx context.Context, stored domain.StoredRecord) (*domain.ReviewRecord, error) {
	rec, err := MigrateIfLegacy(stored)
	if err != nil {
		return nil, err
	}
	if stored.SchemaVersion == domain.SchemaVersionLegacy {
		s.log.InfoContext(ctx, "resolved legacy record",
			slog.String("vocabulary_id", rec.VocabularyID.String()),
			slog.Float64("stability", rec.Stability),
		)
	}

	s.clampOnRead(ctx, &rec)
	return &rec, nil
}

// clampOnRead pulls stability and difficulty back into range. Out-of-range
// values indicate storage corruption or a migration bug; clamping keeps the
// model total instead of dividing by zero later.
func (s *Service) clampOnRead(ctx context.Context, rec *domain.ReviewRecord) {
	stability := memory.ClampStability(rec.Stability)
	difficulty := memory.ClampDifficulty(rec.Difficulty)
	if stability == rec.Stability && difficulty == rec.Difficulty {
		return
	}

	s.log.WarnContext(ctx, "clamped out-of-range review state",
		slog.String("vocabulary_id", rec.VocabularyID.String()),
		slog.Float64("stored_stability", rec.Stability),
		slog.Float64("stored_difficulty", rec.Difficulty),
	)
	rec.Stability = stability
	rec.Difficulty = difficulty
}

// firstRatingFor maps a review-scale rating onto the first-exposure scale
// for lazily created records.
func firstRatingFor(rating domain.ReviewRating) domain.FirstRating {
	switch rating {
	case domain.ReviewRatingAgain:
		return domain.FirstRatingHard
	case domain.ReviewRatingHard:
		return domain.FirstRatingMedium
	default:
		return domain.FirstRatingEasy
	}
}
