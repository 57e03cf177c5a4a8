package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedVocabularyItem inserts one vocabulary item for the learner.
// Returns the filled domain.VocabularyItem.
func SeedVocabularyItem(t *testing.T, pool *pgxpool.Pool, learnerID uuid.UUID) domain.VocabularyItem {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	example := "예문 " + suffix
	item := domain.VocabularyItem{
		ID:          uuid.New(),
		OriginDayID: uuid.New(),
		Korean:      "단어-" + suffix,
		English:     "word-" + suffix,
		Example:     &example,
		CreatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO vocabulary_items (id, learner_id, origin_day_id, korean, english, example, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, learnerID, item.OriginDayID, item.Korean, item.English, item.Example, item.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedVocabularyItem insert: %v", err)
	}

	return item
}

// SeedReviewRecord inserts a memory-model record row for an existing item.
func SeedReviewRecord(t *testing.T, pool *pgxpool.Pool, learnerID uuid.UUID, rec domain.ReviewRecord) {
	t.Helper()
	ctx := context.Background()

	type entryJSON struct {
		ReviewedAt          time.Time `json:"reviewed_at"`
		Rating              string    `json:"rating"`
		ResultingStability  float64   `json:"resulting_stability"`
		ResultingDifficulty float64   `json:"resulting_difficulty"`
	}
	entries := make([]entryJSON, len(rec.History))
	for i, e := range rec.History {
		entries[i] = entryJSON{e.ReviewedAt, e.Rating, e.ResultingStability, e.ResultingDifficulty}
	}
	history, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewRecord marshal history: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO review_records (
		    learner_id, vocabulary_id, origin_day_id, schema_version,
		    stability, difficulty, lapses, total_reviews,
		    last_review_date, next_review_date, history
		 ) VALUES ($1, $2, $3, 2, $4, $5, $6, $7, $8, $9, $10)`,
		learnerID, rec.VocabularyID, rec.OriginDayID,
		rec.Stability, rec.Difficulty, rec.Lapses, rec.TotalReviews,
		rec.LastReviewDate, rec.NextReviewDate, history,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewRecord insert: %v", err)
	}
}

// SeedLegacyRecord inserts an interval-doubling era row for an existing item.
func SeedLegacyRecord(t *testing.T, pool *pgxpool.Pool, learnerID uuid.UUID, legacy domain.LegacyProgress) {
	t.Helper()
	ctx := context.Background()

	type dayJSON struct {
		Date      time.Time `json:"date"`
		Correct   int       `json:"correct"`
		Incorrect int       `json:"incorrect"`
	}
	type stateJSON struct {
		CurrentIntervalDays int       `json:"current_interval_days"`
		History             []dayJSON `json:"history"`
	}
	state := stateJSON{CurrentIntervalDays: legacy.CurrentIntervalDays}
	for _, d := range legacy.History {
		state.History = append(state.History, dayJSON{d.Date, d.Correct, d.Incorrect})
	}
	payload, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("testhelper: SeedLegacyRecord marshal state: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO review_records (
		    learner_id, vocabulary_id, origin_day_id, schema_version,
		    lapses, total_reviews, last_review_date, next_review_date, legacy_state
		 ) VALUES ($1, $2, $3, 1, $4, $5, $6, $7, $8)`,
		learnerID, legacy.VocabularyID, legacy.OriginDayID,
		legacy.TotalLapses(), legacy.TotalReviews,
		legacy.LastReviewDate, legacy.NextReviewDate, payload,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLegacyRecord insert: %v", err)
	}
}
