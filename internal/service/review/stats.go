package review

import (
	"context"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
	"github.com/heartmarshall/mykorean-backend/pkg/ctxutil"
)

// GetRecordStats aggregates the rating history of one word. A word that has
// never been rated yields zero-value stats.
func (s *Service) GetRecordStats(ctx context.Context, input GetRecordStatsInput) (*domain.RecordStats, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNoLearner
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.getVocabularyItem(ctx, input.VocabularyID); err != nil {
		return nil, err
	}

	rec, found, err := s.loadRecord(ctx, learnerID, input.VocabularyID)
	if err != nil {
		return nil, err
	}
	if !found || rec.IsNew() {
		return &domain.RecordStats{}, nil
	}

	stats := &domain.RecordStats{
		TotalReviews: rec.TotalReviews,
		Lapses:       rec.Lapses,
		Stability:    rec.Stability,
		Difficulty:   rec.Difficulty,
	}
	for _, entry := range rec.History {
		switch entry.Rating {
		case domain.ReviewRatingAgain.String():
			stats.Distribution.Again++
		case domain.ReviewRatingHard.String():
			stats.Distribution.Hard++
		default:
			stats.Distribution.Good++
		}
	}
	if n := len(rec.History); n > 0 {
		stats.AccuracyRate = float64(n-stats.Distribution.Again) / float64(n)
	}

	return stats, nil
}
