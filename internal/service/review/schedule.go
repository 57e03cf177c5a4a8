package review

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
	"github.com/heartmarshall/mykorean-backend/pkg/ctxutil"
)

// GetReviewQueue answers a single "what should the learner see now" query:
// due records ordered weakest-first, new items oldest-first, plus aggregate
// counters. The full due set is counted for stats before the per-day cap
// truncates it.
func (s *Service) GetReviewQueue(ctx context.Context, input GetQueueInput) (*domain.ReviewQueue, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNoLearner
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	settings := input.Settings
	if settings == (domain.ReviewSettings{}) {
		settings = s.cfg.Defaults
	}

	now := s.now()

	records, err := s.loadLearnerRecords(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	items, err := s.vocab.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list vocabulary items: %w", err)
	}

	tracked := make(map[uuid.UUID]struct{}, len(records))
	var due []domain.ReviewRecord
	stats := domain.QueueStats{}

	for _, rec := range records {
		if rec.IsNew() {
			continue
		}
		tracked[rec.VocabularyID] = struct{}{}
		stats.TotalTracked++
		if rec.IsMastered(s.cfg.MasteredThresholdDays) {
			stats.MasteredCount++
		}
		if rec.IsDue(now) {
			due = append(due, rec)
		}
	}
	stats.DueToday = len(due)

	// Weakest memories first; equal stabilities keep the longer-overdue one
	// ahead.
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].Stability != due[j].Stability {
			return due[i].Stability < due[j].Stability
		}
		return due[i].NextReviewDate.Before(due[j].NextReviewDate)
	})
	if len(due) > settings.MaxReviewsPerDay {
		due = due[:settings.MaxReviewsPerDay]
	}

	var fresh []domain.VocabularyItem
	for _, item := range items {
		if _, seen := tracked[item.ID]; seen {
			continue
		}
		fresh = append(fresh, item)
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		if !fresh[i].CreatedAt.Equal(fresh[j].CreatedAt) {
			return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
		}
		return fresh[i].ID.String() < fresh[j].ID.String()
	})
	if len(fresh) > settings.NewItemsPerDay {
		fresh = fresh[:settings.NewItemsPerDay]
	}

	s.log.InfoContext(ctx, "review queue generated",
		slog.String("learner_id", learnerID.String()),
		slog.Int("due_total", stats.DueToday),
		slog.Int("due_returned", len(due)),
		slog.Int("new_returned", len(fresh)),
		slog.Int("mastered", stats.MasteredCount),
	)

	return &domain.ReviewQueue{
		Due:   due,
		New:   fresh,
		Stats: stats,
	}, nil
}

// loadLearnerRecords fetches every stored record for the learner and
// resolves the schema variants. Rows that cannot be resolved are logged and
// skipped so one corrupt row does not block the whole queue.
func (s *Service) loadLearnerRecords(ctx context.Context, learnerID uuid.UUID) ([]domain.ReviewRecord, error) {
	stored, err := s.records.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list review records: %w", err)
	}

	records := make([]domain.ReviewRecord, 0, len(stored))
	for _, sr := range stored {
		rec, err := s.resolve(ctx, sr)
		if err != nil {
			s.log.WarnContext(ctx, "skipping unresolvable record",
				slog.String("learner_id", learnerID.String()),
				slog.Int("schema_version", sr.SchemaVersion),
				slog.String("error", err.Error()),
			)
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}
