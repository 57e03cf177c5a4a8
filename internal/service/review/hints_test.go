package review

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHintPool installs n studied-and-due words plus m unstudied ones.
func seedHintPool(deps *testDeps, due, unstudied int) (dueItems, freshItems []domain.VocabularyItem) {
	var items []domain.VocabularyItem
	var stored []domain.StoredRecord

	for i := 0; i < due; i++ {
		item := makeItem("복습", "review word")
		rec := dueRecord(deps, float64(i+1), 1)
		rec.Review.VocabularyID = item.ID
		rec.Review.OriginDayID = item.OriginDayID
		items = append(items, item)
		stored = append(stored, rec)
		dueItems = append(dueItems, item)
	}
	for i := 0; i < unstudied; i++ {
		item := makeItem("새단어", "new word")
		items = append(items, item)
		freshItems = append(freshItems, item)
	}

	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return stored, nil
	}
	deps.vocab.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.VocabularyItem, error) {
		return items, nil
	}
	return dueItems, freshItems
}

func idsOf(items []domain.VocabularyItem) map[uuid.UUID]struct{} {
	ids := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		ids[item.ID] = struct{}{}
	}
	return ids
}

func TestService_SelectChatHints_PrefersDue(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()
	dueItems, _ := seedHintPool(deps, 5, 5)

	hints, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: uuid.New(), Limit: 3})
	require.NoError(t, err)

	require.Len(t, hints, 3)
	dueIDs := idsOf(dueItems)
	for _, h := range hints {
		_, isDue := dueIDs[h.ID]
		assert.True(t, isDue, "hint %s should come from the due pool", h.Korean)
	}
}

func TestService_SelectChatHints_FallsBackToNew(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()
	_, fresh := seedHintPool(deps, 0, 4)

	hints, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: uuid.New(), Limit: 10})
	require.NoError(t, err)

	require.Len(t, hints, 4)
	freshIDs := idsOf(fresh)
	for _, h := range hints {
		_, isFresh := freshIDs[h.ID]
		assert.True(t, isFresh)
	}
}

func TestService_SelectChatHints_SampleStableWithinSession(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()
	seedHintPool(deps, 10, 0)
	session := uuid.New()

	first, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: session, Limit: 4})
	require.NoError(t, err)

	// Even if storage changes mid-session the sample must not move.
	seedHintPool(deps, 3, 0)

	second, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: session, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestService_SelectChatHints_DisjointAcrossSessions(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()
	seedHintPool(deps, 10, 0)

	a, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: uuid.New(), Limit: 5})
	require.NoError(t, err)
	b, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: uuid.New(), Limit: 5})
	require.NoError(t, err)

	taken := idsOf(a)
	for _, h := range b {
		_, dup := taken[h.ID]
		assert.False(t, dup, "hint %s sampled by both sessions", h.ID)
	}
}

func TestService_SelectChatHints_EndSessionReleasesHints(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()
	seedHintPool(deps, 3, 0)

	session := uuid.New()
	first, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: session, Limit: 3})
	require.NoError(t, err)
	require.Len(t, first, 3)

	// The whole pool is held, so a second session gets nothing.
	starved, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: uuid.New(), Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, starved)

	svc.EndHintSession(ctx, session)

	third, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: uuid.New(), Limit: 3})
	require.NoError(t, err)
	assert.Len(t, third, 3)
}

func TestService_SelectChatHints_DefaultLimit(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()
	seedHintPool(deps, 30, 0)

	hints, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: uuid.New()})
	require.NoError(t, err)
	assert.Len(t, hints, domain.DefaultReviewConfig().ChatHintLimit)
}

func TestService_SelectChatHints_SkipsRecordWithoutItem(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	ctx, _ := learnerCtx()

	orphan := dueRecord(deps, 2, 1)
	deps.records.ListByLearnerFunc = func(context.Context, uuid.UUID) ([]domain.StoredRecord, error) {
		return []domain.StoredRecord{orphan}, nil
	}

	hints, err := svc.SelectChatHints(ctx, SelectChatHintsInput{SessionID: uuid.New(), Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, hints)
}

func TestService_SelectChatHints_NoLearner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.SelectChatHints(context.Background(), SelectChatHintsInput{SessionID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrNoLearner)
}

func TestService_EndHintSession_Unknown(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	svc.EndHintSession(context.Background(), uuid.New())
}
