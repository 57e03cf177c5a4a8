package domain

import (
	"time"

	"github.com/google/uuid"
)

// LegacyProgress is the original interval-doubling review format. It is read
// for migration only; no new records are ever written in this shape.
type LegacyProgress struct {
	VocabularyID        uuid.UUID
	OriginDayID         uuid.UUID
	CurrentIntervalDays int
	NextReviewDate      time.Time
	LastReviewDate      *time.Time
	TotalReviews        int
	History             []LegacyReviewDay
}

// LegacyReviewDay is one day of the legacy history: how many prompts for the
// item were answered correctly and incorrectly on that date.
type LegacyReviewDay struct {
	Date      time.Time
	Correct   int
	Incorrect int
}

// TotalLapses sums the incorrect answers over the whole legacy history.
func (l *LegacyProgress) TotalLapses() int {
	n := 0
	for _, d := range l.History {
		n += d.Incorrect
	}
	return n
}
