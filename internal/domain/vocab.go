package domain

import (
	"time"

	"github.com/google/uuid"
)

// VocabularyItem is an immutable vocabulary fact collected by the learner or
// extracted from a conversation by a generation step. It is never mutated;
// it disappears only when its owning conversation-day record is deleted.
type VocabularyItem struct {
	ID          uuid.UUID
	OriginDayID uuid.UUID
	Korean      string
	English     string
	Example     *string
	CreatedAt   time.Time
}
