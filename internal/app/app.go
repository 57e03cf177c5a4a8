package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mykorean-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mykorean-backend/internal/adapter/postgres/reviewrecord"
	"github.com/heartmarshall/mykorean-backend/internal/adapter/postgres/vocabitem"
	"github.com/heartmarshall/mykorean-backend/internal/config"
	"github.com/heartmarshall/mykorean-backend/internal/service/review"
	"github.com/heartmarshall/mykorean-backend/internal/service/review/memory"
)

// App wires the review engine and its PostgreSQL storage together. Host
// applications embed the engine through App; the repository's utility
// commands use it as their composition root.
type App struct {
	Cfg  *config.Config
	Log  *slog.Logger
	Pool *pgxpool.Pool
	Tx   *postgres.TxManager

	Records *reviewrecord.Repo
	Vocab   *vocabitem.Repo
	Review  *review.Service
}

// New loads configuration, initializes the logger, connects to the database,
// and constructs the review service. The caller owns the returned App and
// must Close it.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting review engine",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	records := reviewrecord.New(pool)
	vocab := vocabitem.New(pool)

	reviewSvc, err := review.NewService(
		logger,
		records,
		vocab,
		cfg.Review.ToDomain(),
		memory.DefaultWeights(),
		nil, // wall clock
		nil, // time-seeded sampling
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create review service: %w", err)
	}

	return &App{
		Cfg:     cfg,
		Log:     logger,
		Pool:    pool,
		Tx:      postgres.NewTxManager(pool),
		Records: records,
		Vocab:   vocab,
		Review:  reviewSvc,
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}
