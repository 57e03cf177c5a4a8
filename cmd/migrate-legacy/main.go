// Command migrate-legacy rewrites review records still stored in the old
// interval-doubling format into the current memory-model format. It is
// idempotent: already-migrated rows are never touched, so it is safe to
// re-run after a partial failure.
//
// By default every learner with legacy rows is migrated; -learner restricts
// the pass to one learner. Each learner's rewrite runs in a single
// transaction.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/app"
	"github.com/heartmarshall/mykorean-backend/internal/service/review"
)

func main() {
	learnerFlag := flag.String("learner", "", "migrate only this learner id (default: all learners with legacy rows)")
	dryRun := flag.Bool("dry-run", false, "report what would be migrated without writing")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	learners, err := resolveLearners(ctx, a, *learnerFlag)
	if err != nil {
		a.Log.Error("resolve learners", slog.String("error", err.Error()))
		os.Exit(1)
	}

	total := 0
	for _, learnerID := range learners {
		n, err := migrateLearner(ctx, a, learnerID, *dryRun)
		if err != nil {
			a.Log.Error("migration failed",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		total += n
	}

	a.Log.Info("migration completed",
		slog.Int("learners", len(learners)),
		slog.Int("records", total),
		slog.Bool("dry_run", *dryRun),
	)
}

func resolveLearners(ctx context.Context, a *app.App, flagValue string) ([]uuid.UUID, error) {
	if flagValue != "" {
		id, err := uuid.Parse(flagValue)
		if err != nil {
			return nil, err
		}
		return []uuid.UUID{id}, nil
	}
	return a.Records.LegacyLearners(ctx)
}

func migrateLearner(ctx context.Context, a *app.App, learnerID uuid.UUID, dryRun bool) (int, error) {
	stored, err := a.Records.ListLegacy(ctx, learnerID)
	if err != nil {
		return 0, err
	}
	if len(stored) == 0 {
		return 0, nil
	}
	if dryRun {
		a.Log.Info("would migrate",
			slog.String("learner_id", learnerID.String()),
			slog.Int("records", len(stored)),
		)
		return len(stored), nil
	}

	err = a.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, s := range stored {
			rec, err := review.MigrateIfLegacy(s)
			if err != nil {
				return err
			}
			if err := a.Records.Save(txCtx, learnerID, rec.OriginDayID, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	a.Log.Info("migrated learner",
		slog.String("learner_id", learnerID.String()),
		slog.Int("records", len(stored)),
	)
	return len(stored), nil
}
