package review

import (
	"fmt"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
	"github.com/heartmarshall/mykorean-backend/internal/service/review/memory"
)

// MigrateIfLegacy resolves a stored record into the memory-model shape.
// Records already in the current schema pass through untouched, so the
// transform is idempotent. A stored record whose payload does not match its
// schema version fails with ErrInvalidState.
func MigrateIfLegacy(stored domain.StoredRecord) (domain.ReviewRecord, error) {
	switch {
	case stored.SchemaVersion == domain.SchemaVersionMemoryModel && stored.Review != nil:
		return stored.Review.Clone(), nil
	case stored.SchemaVersion == domain.SchemaVersionLegacy && stored.Legacy != nil:
		return MigrateLegacy(*stored.Legacy), nil
	default:
		return domain.ReviewRecord{}, fmt.Errorf("stored record schema %d carries no payload: %w",
			stored.SchemaVersion, domain.ErrInvalidState)
	}
}

// MigrateLegacy converts an interval-doubling record into the memory-model
// shape. Stability seeds from the last interval, difficulty starts neutral,
// and the day-aggregated history is replayed through the old doubling rule
// so every entry carries a reconstructed state.
func MigrateLegacy(legacy domain.LegacyProgress) domain.ReviewRecord {
	rec := domain.ReviewRecord{
		VocabularyID:   legacy.VocabularyID,
		OriginDayID:    legacy.OriginDayID,
		Stability:      max(1, float64(legacy.CurrentIntervalDays)),
		Difficulty:     memory.NeutralDifficulty,
		Lapses:         legacy.TotalLapses(),
		TotalReviews:   legacy.TotalReviews,
		LastReviewDate: legacy.LastReviewDate,
		NextReviewDate: legacy.NextReviewDate,
	}

	// Replay of the old rule: a good day doubles the interval, a failed day
	// resets it to one.
	rec.History = make([]domain.ReviewEntry, 0, len(legacy.History))
	interval := 0
	for _, day := range legacy.History {
		var rating domain.ReviewRating
		if day.Correct > day.Incorrect {
			rating = domain.ReviewRatingGood
			interval = max(1, interval*2)
		} else {
			rating = domain.ReviewRatingAgain
			interval = 1
		}
		rec.History = append(rec.History, domain.ReviewEntry{
			ReviewedAt:          day.Date,
			Rating:              rating.String(),
			ResultingStability:  float64(interval),
			ResultingDifficulty: memory.NeutralDifficulty,
		})
	}

	return rec
}
