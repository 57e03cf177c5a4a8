package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dueRecord builds a record that became due `overdueDays` ago.
func dueRecord(deps *testDeps, stability float64, overdueDays int) domain.StoredRecord {
	next := deps.now.AddDate(0, 0, -overdueDays)
	last := next.AddDate(0, 0, -int(stability))
	return storedV2(domain.ReviewRecord{
		VocabularyID:   uuid.New(),
		OriginDayID:    uuid.New(),
		Stability:      stability,
		Difficulty:     5,
		TotalReviews:   1,
		LastReviewDate: &last,
		NextReviewDate: next,
		History: []domain.ReviewEntry{
			{ReviewedAt: last, Rating: "MEDIUM", ResultingStability: stability, ResultingDifficulty: 5},
		},
	})
}

func TestService_GetReviewQueue_OrdersByStabilityAndTruncates(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	// 25 due records with stabilities 25..1, deliberately unsorted.
	var stored []domain.StoredRecord
	for s := 25; s >= 1; s-- {
		stored = append(stored, dueRecord(deps, float64(s), 1))
	}
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return stored, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{
		Settings: domain.ReviewSettings{MaxReviewsPerDay: 20, NewItemsPerDay: 5, DesiredRetention: 0.9},
	})
	require.NoError(t, err)

	require.Len(t, queue.Due, 20)
	assert.Equal(t, 25, queue.Stats.DueToday)
	assert.Equal(t, 25, queue.Stats.TotalTracked)
	for i := range queue.Due {
		assert.Equal(t, float64(i+1), queue.Due[i].Stability)
	}
}

func TestService_GetReviewQueue_TieBreakByDueDate(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	younger := dueRecord(deps, 4, 1)
	older := dueRecord(deps, 4, 6)
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return []domain.StoredRecord{younger, older}, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{})
	require.NoError(t, err)

	require.Len(t, queue.Due, 2)
	assert.Equal(t, older.Review.VocabularyID, queue.Due[0].VocabularyID)
	assert.Equal(t, younger.Review.VocabularyID, queue.Due[1].VocabularyID)
}

func TestService_GetReviewQueue_NotYetDueExcluded(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	future := dueRecord(deps, 3, -2) // due two days from now
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return []domain.StoredRecord{future}, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{})
	require.NoError(t, err)

	assert.Empty(t, queue.Due)
	assert.Equal(t, 0, queue.Stats.DueToday)
	assert.Equal(t, 1, queue.Stats.TotalTracked)
}

func TestService_GetReviewQueue_NewItemsOldestFirst(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	items := make([]domain.VocabularyItem, 5)
	for i := range items {
		items[i] = makeItem("단어", "word")
		// Newest first in storage order; the queue must flip them.
		items[i].CreatedAt = base.AddDate(0, 0, len(items)-i)
	}
	deps.vocab.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.VocabularyItem, error) {
		return items, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{
		Settings: domain.ReviewSettings{MaxReviewsPerDay: 10, NewItemsPerDay: 3, DesiredRetention: 0.9},
	})
	require.NoError(t, err)

	require.Len(t, queue.New, 3)
	for i := 1; i < len(queue.New); i++ {
		assert.True(t, !queue.New[i].CreatedAt.Before(queue.New[i-1].CreatedAt))
	}
	assert.Equal(t, items[4].ID, queue.New[0].ID)
}

func TestService_GetReviewQueue_TrackedItemsNotNew(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	studied := makeItem("공부", "study")
	fresh := makeItem("새", "new")
	deps.vocab.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.VocabularyItem, error) {
		return []domain.VocabularyItem{studied, fresh}, nil
	}

	rec := dueRecord(deps, 3, 0)
	rec.Review.VocabularyID = studied.ID
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return []domain.StoredRecord{rec}, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{})
	require.NoError(t, err)

	require.Len(t, queue.New, 1)
	assert.Equal(t, fresh.ID, queue.New[0].ID)
}

func TestService_GetReviewQueue_UnratedRecordNeverDue(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	item := makeItem("새", "new")
	unrated := storedV2(domain.ReviewRecord{
		VocabularyID:   item.ID,
		OriginDayID:    item.OriginDayID,
		NextReviewDate: deps.now.AddDate(0, 0, -30),
	})
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return []domain.StoredRecord{unrated}, nil
	}
	deps.vocab.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.VocabularyItem, error) {
		return []domain.VocabularyItem{item}, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{})
	require.NoError(t, err)

	assert.Empty(t, queue.Due)
	assert.Equal(t, 0, queue.Stats.TotalTracked)
	// The word still surfaces through the new-item path.
	require.Len(t, queue.New, 1)
	assert.Equal(t, item.ID, queue.New[0].ID)
}

func TestService_GetReviewQueue_MasteredCount(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	weak := dueRecord(deps, 3, -5)
	strong := dueRecord(deps, 45, -5)
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return []domain.StoredRecord{weak, strong}, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{})
	require.NoError(t, err)

	assert.Equal(t, 1, queue.Stats.MasteredCount)
	assert.Equal(t, 2, queue.Stats.TotalTracked)
}

func TestService_GetReviewQueue_DefaultSettings(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	var stored []domain.StoredRecord
	for i := 0; i < 120; i++ {
		stored = append(stored, dueRecord(deps, float64(i+1), 1))
	}
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return stored, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{})
	require.NoError(t, err)

	// Default cap is 100 reviews per day.
	assert.Len(t, queue.Due, 100)
	assert.Equal(t, 120, queue.Stats.DueToday)
}

func TestService_GetReviewQueue_SkipsCorruptRow(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	good := dueRecord(deps, 2, 1)
	corrupt := domain.StoredRecord{SchemaVersion: domain.SchemaVersionMemoryModel}
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return []domain.StoredRecord{corrupt, good}, nil
	}

	queue, err := svc.GetReviewQueue(ctx, GetQueueInput{})
	require.NoError(t, err)
	require.Len(t, queue.Due, 1)
}

func TestService_GetReviewQueue_InvalidSettings(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx, _ := learnerCtx()

	_, err := svc.GetReviewQueue(ctx, GetQueueInput{
		Settings: domain.ReviewSettings{MaxReviewsPerDay: -1, NewItemsPerDay: 5, DesiredRetention: 0.9},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_GetReviewQueue_NoLearner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.GetReviewQueue(context.Background(), GetQueueInput{})
	require.ErrorIs(t, err, domain.ErrNoLearner)
}
