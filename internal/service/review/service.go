package review

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
	"github.com/heartmarshall/mykorean-backend/internal/service/review/memory"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type recordStore interface {
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.StoredRecord, error)
	Get(ctx context.Context, learnerID, vocabularyID uuid.UUID) (domain.StoredRecord, error)
	Save(ctx context.Context, learnerID, dayID uuid.UUID, record domain.ReviewRecord) error
}

type vocabStore interface {
	Get(ctx context.Context, id uuid.UUID) (domain.VocabularyItem, error)
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.VocabularyItem, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the review scheduling logic. It is synchronous and
// holds no locks: the host is expected to serialize calls per learner.
type Service struct {
	records recordStore
	vocab   vocabStore
	log     *slog.Logger
	cfg     domain.ReviewConfig
	weights memory.Weights

	// now and rng are injectable so schedules and hint samples are
	// reproducible in tests.
	now func() time.Time
	rng *rand.Rand

	// hintSessions maps an open chat session to its sampled hints. The
	// sample is fixed for the session's lifetime.
	hintSessions map[uuid.UUID][]domain.VocabularyItem
}

// NewService creates a new Review service. A nil now falls back to time.Now;
// a nil rng falls back to a time-seeded source.
func NewService(
	log *slog.Logger,
	records recordStore,
	vocab vocabStore,
	cfg domain.ReviewConfig,
	weights memory.Weights,
	now func() time.Time,
	rng *rand.Rand,
) (*Service, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid memory weights: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid review config: %w", err)
	}

	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(now().UnixNano()))
	}

	return &Service{
		records:      records,
		vocab:        vocab,
		log:          log.With("service", "review"),
		cfg:          cfg,
		weights:      weights,
		now:          now,
		rng:          rng,
		hintSessions: make(map[uuid.UUID][]domain.VocabularyItem),
	}, nil
}
