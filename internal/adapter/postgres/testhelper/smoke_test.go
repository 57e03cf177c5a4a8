package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	learnerID := uuid.New()
	item := SeedVocabularyItem(t, pool, learnerID)

	var korean string
	err := pool.QueryRow(
		context.Background(),
		`SELECT korean FROM vocabulary_items WHERE id = $1`,
		item.ID,
	).Scan(&korean)
	if err != nil {
		t.Fatalf("expected item in DB, got error: %v", err)
	}

	if korean != item.Korean {
		t.Fatalf("expected korean %q, got %q", item.Korean, korean)
	}
}
