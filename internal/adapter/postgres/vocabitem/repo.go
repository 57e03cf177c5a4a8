// Package vocabitem implements the VocabularyItem repository using PostgreSQL.
package vocabitem

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/mykorean-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mykorean-backend/internal/domain"
)

// Repo provides vocabulary item persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new vocabulary item repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `
SELECT id, origin_day_id, korean, english, example, created_at
FROM vocabulary_items
WHERE id = $1`

const listByLearnerSQL = `
SELECT id, origin_day_id, korean, english, example, created_at
FROM vocabulary_items
WHERE learner_id = $1
ORDER BY created_at, id`

const createSQL = `
INSERT INTO vocabulary_items (id, learner_id, origin_day_id, korean, english, example, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
RETURNING id, origin_day_id, korean, english, example, created_at`

const deleteByOriginDaySQL = `
DELETE FROM vocabulary_items
WHERE learner_id = $1 AND origin_day_id = $2`

// Get returns the item by id. Returns domain.ErrNotFound if absent.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (domain.VocabularyItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var item domain.VocabularyItem
	err := querier.QueryRow(ctx, getSQL, id).Scan(
		&item.ID,
		&item.OriginDayID,
		&item.Korean,
		&item.English,
		&item.Example,
		&item.CreatedAt,
	)
	if err != nil {
		return domain.VocabularyItem{}, mapError(err, id)
	}
	return item, nil
}

// ListByLearner returns every item the learner has collected, oldest first.
func (r *Repo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.VocabularyItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByLearnerSQL, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list vocabulary_items: %w", err)
	}
	defer rows.Close()

	var items []domain.VocabularyItem
	for rows.Next() {
		var item domain.VocabularyItem
		if err := rows.Scan(
			&item.ID,
			&item.OriginDayID,
			&item.Korean,
			&item.English,
			&item.Example,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan vocabulary_item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vocabulary_items: %w", err)
	}

	return items, nil
}

// Create inserts a new item for the learner. A zero item.ID gets a fresh one.
func (r *Repo) Create(ctx context.Context, learnerID uuid.UUID, item domain.VocabularyItem) (domain.VocabularyItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := item.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var created domain.VocabularyItem
	err := querier.QueryRow(ctx, createSQL,
		id,
		learnerID,
		item.OriginDayID,
		domain.NormalizeText(item.Korean),
		domain.NormalizeText(item.English),
		item.Example,
	).Scan(
		&created.ID,
		&created.OriginDayID,
		&created.Korean,
		&created.English,
		&created.Example,
		&created.CreatedAt,
	)
	if err != nil {
		return domain.VocabularyItem{}, mapError(err, id)
	}
	return created, nil
}

// DeleteByOriginDay removes every item owned by one conversation day.
// Review records cascade with the items.
func (r *Repo) DeleteByOriginDay(ctx context.Context, learnerID, originDayID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteByOriginDaySQL, learnerID, originDayID); err != nil {
		return fmt.Errorf("delete vocabulary_items by origin day: %w", err)
	}
	return nil
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
		return fmt.Errorf("vocabulary_item %s: %w", id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("vocabulary_item %s: %w", id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("vocabulary_item %s: %w", id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("vocabulary_item %s: %w", id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("vocabulary_item %s: %w", id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("vocabulary_item %s: %w", id, err)
}
