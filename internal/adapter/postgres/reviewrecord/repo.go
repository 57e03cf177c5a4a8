// Package reviewrecord implements the review record store using PostgreSQL.
// Both persisted schema generations live in one table: current rows carry
// the memory-model columns with the rating log in a history JSONB, legacy
// rows carry their interval-doubling payload in legacy_state.
package reviewrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/mykorean-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mykorean-backend/internal/domain"
)

// Repo provides review record persistence backed by PostgreSQL.
type Repo struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

// New creates a new review record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var selectColumns = []string{
	"vocabulary_id",
	"origin_day_id",
	"schema_version",
	"stability",
	"difficulty",
	"lapses",
	"total_reviews",
	"last_review_date",
	"next_review_date",
	"history",
	"legacy_state",
}

const saveSQL = `
INSERT INTO review_records (
    learner_id, vocabulary_id, origin_day_id, schema_version,
    stability, difficulty, lapses, total_reviews,
    last_review_date, next_review_date, history, legacy_state, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULL, now())
ON CONFLICT (learner_id, vocabulary_id) DO UPDATE SET
    origin_day_id    = EXCLUDED.origin_day_id,
    schema_version   = EXCLUDED.schema_version,
    stability        = EXCLUDED.stability,
    difficulty       = EXCLUDED.difficulty,
    lapses           = EXCLUDED.lapses,
    total_reviews    = EXCLUDED.total_reviews,
    last_review_date = EXCLUDED.last_review_date,
    next_review_date = EXCLUDED.next_review_date,
    history          = EXCLUDED.history,
    legacy_state     = NULL,
    updated_at       = now()`

// Get returns the stored record for one word. Returns domain.ErrNotFound if
// the word has never been rated.
func (r *Repo) Get(ctx context.Context, learnerID, vocabularyID uuid.UUID) (domain.StoredRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := r.builder.
		Select(selectColumns...).
		From("review_records").
		Where(sq.Eq{"learner_id": learnerID, "vocabulary_id": vocabularyID}).
		ToSql()
	if err != nil {
		return domain.StoredRecord{}, fmt.Errorf("build get query: %w", err)
	}

	stored, err := scanStored(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.StoredRecord{}, mapError(err, vocabularyID)
	}
	return stored, nil
}

// ListByLearner returns every stored record for the learner, both schema
// generations included.
func (r *Repo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.StoredRecord, error) {
	return r.list(ctx, sq.Eq{"learner_id": learnerID})
}

// ListLegacy returns only the learner's rows still in the old
// interval-doubling format. Used by the migration pass.
func (r *Repo) ListLegacy(ctx context.Context, learnerID uuid.UUID) ([]domain.StoredRecord, error) {
	return r.list(ctx, sq.Eq{
		"learner_id":     learnerID,
		"schema_version": domain.SchemaVersionLegacy,
	})
}

// LegacyLearners returns the distinct learner ids that still own rows in the
// old format. Used by the migration pass to scope its work.
func (r *Repo) LegacyLearners(ctx context.Context) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := r.builder.
		Select("DISTINCT learner_id").
		From("review_records").
		Where(sq.Eq{"schema_version": domain.SchemaVersionLegacy}).
		OrderBy("learner_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build legacy learners query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list legacy learners: %w", err)
	}
	defer rows.Close()

	var learners []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan learner id: %w", err)
		}
		learners = append(learners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy learners: %w", err)
	}

	return learners, nil
}

func (r *Repo) list(ctx context.Context, where sq.Eq) ([]domain.StoredRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := r.builder.
		Select(selectColumns...).
		From("review_records").
		Where(where).
		OrderBy("next_review_date", "vocabulary_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review_records: %w", err)
	}
	defer rows.Close()

	var records []domain.StoredRecord
	for rows.Next() {
		stored, err := scanStored(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review_record: %w", err)
		}
		records = append(records, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review_records: %w", err)
	}

	return records, nil
}

// Save upserts a memory-model record. Writing always clears any legacy
// payload, so a migrated record never reverts.
func (r *Repo) Save(ctx context.Context, learnerID, dayID uuid.UUID, record domain.ReviewRecord) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	history, err := json.Marshal(historyToJSON(record.History))
	if err != nil {
		return fmt.Errorf("marshal review history: %w", err)
	}

	_, err = querier.Exec(ctx, saveSQL,
		learnerID,
		record.VocabularyID,
		dayID,
		domain.SchemaVersionMemoryModel,
		record.Stability,
		record.Difficulty,
		record.Lapses,
		record.TotalReviews,
		record.LastReviewDate,
		record.NextReviewDate,
		history,
	)
	if err != nil {
		return mapError(err, record.VocabularyID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// JSONB payloads
// ---------------------------------------------------------------------------

type reviewEntryJSON struct {
	ReviewedAt          time.Time `json:"reviewed_at"`
	Rating              string    `json:"rating"`
	ResultingStability  float64   `json:"resulting_stability"`
	ResultingDifficulty float64   `json:"resulting_difficulty"`
}

type legacyStateJSON struct {
	CurrentIntervalDays int             `json:"current_interval_days"`
	History             []legacyDayJSON `json:"history"`
}

type legacyDayJSON struct {
	Date      time.Time `json:"date"`
	Correct   int       `json:"correct"`
	Incorrect int       `json:"incorrect"`
}

func historyToJSON(history []domain.ReviewEntry) []reviewEntryJSON {
	out := make([]reviewEntryJSON, len(history))
	for i, e := range history {
		out[i] = reviewEntryJSON{
			ReviewedAt:          e.ReviewedAt,
			Rating:              e.Rating,
			ResultingStability:  e.ResultingStability,
			ResultingDifficulty: e.ResultingDifficulty,
		}
	}
	return out
}

func historyFromJSON(entries []reviewEntryJSON) []domain.ReviewEntry {
	out := make([]domain.ReviewEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.ReviewEntry{
			ReviewedAt:          e.ReviewedAt,
			Rating:              e.Rating,
			ResultingStability:  e.ResultingStability,
			ResultingDifficulty: e.ResultingDifficulty,
		}
	}
	return out
}

// scanStored decodes one row into the tagged variant.
func scanStored(row pgx.Row) (domain.StoredRecord, error) {
	var (
		vocabularyID   uuid.UUID
		originDayID    uuid.UUID
		schemaVersion  int
		stability      *float64
		difficulty     *float64
		lapses         int
		totalReviews   int
		lastReviewDate *time.Time
		nextReviewDate time.Time
		historyRaw     []byte
		legacyRaw      []byte
	)

	if err := row.Scan(
		&vocabularyID,
		&originDayID,
		&schemaVersion,
		&stability,
		&difficulty,
		&lapses,
		&totalReviews,
		&lastReviewDate,
		&nextReviewDate,
		&historyRaw,
		&legacyRaw,
	); err != nil {
		return domain.StoredRecord{}, err
	}

	stored := domain.StoredRecord{SchemaVersion: schemaVersion}

	switch schemaVersion {
	case domain.SchemaVersionLegacy:
		var state legacyStateJSON
		if err := json.Unmarshal(legacyRaw, &state); err != nil {
			return domain.StoredRecord{}, fmt.Errorf("unmarshal legacy_state: %w", err)
		}
		legacy := &domain.LegacyProgress{
			VocabularyID:        vocabularyID,
			OriginDayID:         originDayID,
			CurrentIntervalDays: state.CurrentIntervalDays,
			NextReviewDate:      nextReviewDate,
			LastReviewDate:      lastReviewDate,
			TotalReviews:        totalReviews,
		}
		for _, day := range state.History {
			legacy.History = append(legacy.History, domain.LegacyReviewDay{
				Date:      day.Date,
				Correct:   day.Correct,
				Incorrect: day.Incorrect,
			})
		}
		stored.Legacy = legacy

	case domain.SchemaVersionMemoryModel:
		var entries []reviewEntryJSON
		if err := json.Unmarshal(historyRaw, &entries); err != nil {
			return domain.StoredRecord{}, fmt.Errorf("unmarshal history: %w", err)
		}
		rec := &domain.ReviewRecord{
			VocabularyID:   vocabularyID,
			OriginDayID:    originDayID,
			Lapses:         lapses,
			TotalReviews:   totalReviews,
			LastReviewDate: lastReviewDate,
			NextReviewDate: nextReviewDate,
			History:        historyFromJSON(entries),
		}
		if stability != nil {
			rec.Stability = *stability
		}
		if difficulty != nil {
			rec.Difficulty = *difficulty
		}
		stored.Review = rec
	}

	return stored, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("review_record %s: %w", id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("review_record %s: %w", id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("review_record %s: %w", id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("review_record %s: %w", id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("review_record %s: %w", id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("review_record %s: %w", id, err)
}
