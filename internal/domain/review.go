package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewRecord holds the memory-model state of one vocabulary item.
// At most one record exists per VocabularyItem. Records are values: the
// rating processor returns an updated copy and never mutates shared state.
type ReviewRecord struct {
	VocabularyID uuid.UUID
	// OriginDayID routes writes to the correct conversation-day container.
	OriginDayID uuid.UUID
	// Stability is the number of days until retrievability decays to the
	// desired retention. Always positive.
	Stability float64
	// Difficulty is the intrinsic hardness of the item in [1, 10].
	Difficulty     float64
	Lapses         int
	TotalReviews   int
	LastReviewDate *time.Time
	// NextReviewDate is always derived from stability, never set directly.
	NextReviewDate time.Time
	// History is the append-only log of rating events.
	// len(History) == TotalReviews at all times.
	History []ReviewEntry
}

// ReviewEntry records a single rating event. Rating holds the label from
// whichever scale produced it: the first-exposure scale (HARD/MEDIUM/EASY)
// or the review scale (AGAIN/HARD/GOOD).
type ReviewEntry struct {
	ReviewedAt          time.Time
	Rating              string
	ResultingStability  float64
	ResultingDifficulty float64
}

// IsNew reports whether the record has never been rated.
func (r *ReviewRecord) IsNew() bool {
	return r.TotalReviews == 0
}

// IsDue reports whether the record needs review at the given time.
// New records are never due through elapsed time.
func (r *ReviewRecord) IsDue(now time.Time) bool {
	if r.IsNew() {
		return false
	}
	return !r.NextReviewDate.After(now)
}

// IsMastered reports whether stability has reached the mastered threshold.
func (r *ReviewRecord) IsMastered(thresholdDays float64) bool {
	return r.Stability >= thresholdDays
}

// Clone returns a deep copy, so callers can hand records across API
// boundaries without sharing the history slice.
func (r *ReviewRecord) Clone() ReviewRecord {
	out := *r
	if r.LastReviewDate != nil {
		t := *r.LastReviewDate
		out.LastReviewDate = &t
	}
	out.History = make([]ReviewEntry, len(r.History))
	copy(out.History, r.History)
	return out
}

// Schema versions of the persisted record layout. Version 1 is the original
// interval-doubling format; version 2 is the memory-model format.
const (
	SchemaVersionLegacy      = 1
	SchemaVersionMemoryModel = 2
)

// StoredRecord is the tagged variant the store hands back: exactly one of
// Review or Legacy is set, matching SchemaVersion. Legacy records are
// resolved through migration once at load time, so everything past the load
// boundary only ever sees ReviewRecord.
type StoredRecord struct {
	SchemaVersion int
	Review        *ReviewRecord
	Legacy        *LegacyProgress
}

// ReviewQueue is the scheduler's answer for a single "what now" query.
type ReviewQueue struct {
	Due   []ReviewRecord
	New   []VocabularyItem
	Stats QueueStats
}

// QueueStats holds aggregate counters returned alongside the queue.
type QueueStats struct {
	DueToday      int
	TotalTracked  int
	MasteredCount int
}

// RatingCounts holds per-rating counters over a record's history.
type RatingCounts struct {
	Again int
	Hard  int
	Good  int
}

// RecordStats holds aggregated statistics for a single record.
type RecordStats struct {
	TotalReviews int
	Lapses       int
	AccuracyRate float64
	Distribution RatingCounts
	Stability    float64
	Difficulty   float64
}
