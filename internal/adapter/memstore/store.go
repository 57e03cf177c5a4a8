// Package memstore provides in-process implementations of the review engine's
// storage interfaces. Intended for tests and for hosts that embed the engine
// without a database.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
)

type recordKey struct {
	learnerID    uuid.UUID
	vocabularyID uuid.UUID
}

// Store holds vocabulary items and review records in memory.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	items   map[uuid.UUID]domain.VocabularyItem
	owners  map[uuid.UUID]uuid.UUID // item id -> learner id
	records map[recordKey]domain.StoredRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{
		items:   make(map[uuid.UUID]domain.VocabularyItem),
		owners:  make(map[uuid.UUID]uuid.UUID),
		records: make(map[recordKey]domain.StoredRecord),
	}
}

// ---------------------------------------------------------------------------
// Vocabulary items
// ---------------------------------------------------------------------------

// AddItem registers a vocabulary item for the learner. A zero item ID gets a
// generated one. Returns the stored item.
func (s *Store) AddItem(learnerID uuid.UUID, item domain.VocabularyItem) domain.VocabularyItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.Korean = domain.NormalizeText(item.Korean)
	item.English = domain.NormalizeText(item.English)
	s.items[item.ID] = item
	s.owners[item.ID] = learnerID
	return item
}

// Get returns the item by id. Returns domain.ErrNotFound if absent.
func (s *Store) Get(_ context.Context, id uuid.UUID) (domain.VocabularyItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return domain.VocabularyItem{}, fmt.Errorf("vocabulary item %s: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

// ListByLearner returns the learner's items ordered by creation time, ties
// broken by id.
func (s *Store) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]domain.VocabularyItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.VocabularyItem
	for id, owner := range s.owners {
		if owner == learnerID {
			items = append(items, s.items[id])
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

// ---------------------------------------------------------------------------
// Review records
// ---------------------------------------------------------------------------

// RecordStore exposes the record half of the store under its own type so a
// host can hand the two capabilities out separately.
type RecordStore struct {
	s *Store
}

// Records returns the record-facing view of the store.
func (s *Store) Records() *RecordStore {
	return &RecordStore{s: s}
}

// ListByLearner returns every stored record for the learner.
func (r *RecordStore) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]domain.StoredRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var records []domain.StoredRecord
	for key, rec := range r.s.records {
		if key.learnerID == learnerID {
			records = append(records, cloneStored(rec))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return vocabularyID(records[i]).String() < vocabularyID(records[j]).String()
	})
	return records, nil
}

// Get returns the stored record for one word. Returns domain.ErrNotFound if
// the word has never been rated.
func (r *RecordStore) Get(_ context.Context, learnerID, vocabularyID uuid.UUID) (domain.StoredRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.records[recordKey{learnerID, vocabularyID}]
	if !ok {
		return domain.StoredRecord{}, fmt.Errorf("review record %s: %w", vocabularyID, domain.ErrNotFound)
	}
	return cloneStored(rec), nil
}

// Save upserts a memory-model record, replacing any legacy payload.
func (r *RecordStore) Save(_ context.Context, learnerID, dayID uuid.UUID, record domain.ReviewRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record.OriginDayID = dayID
	clone := record.Clone()
	r.s.records[recordKey{learnerID, record.VocabularyID}] = domain.StoredRecord{
		SchemaVersion: domain.SchemaVersionMemoryModel,
		Review:        &clone,
	}
	return nil
}

// SeedLegacy stores an interval-doubling era record. Test seam: the write
// path only ever produces the current format.
func (r *RecordStore) SeedLegacy(learnerID uuid.UUID, legacy domain.LegacyProgress) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.records[recordKey{learnerID, legacy.VocabularyID}] = domain.StoredRecord{
		SchemaVersion: domain.SchemaVersionLegacy,
		Legacy:        &legacy,
	}
}

func cloneStored(rec domain.StoredRecord) domain.StoredRecord {
	out := domain.StoredRecord{SchemaVersion: rec.SchemaVersion}
	if rec.Review != nil {
		clone := rec.Review.Clone()
		out.Review = &clone
	}
	if rec.Legacy != nil {
		legacy := *rec.Legacy
		legacy.History = append([]domain.LegacyReviewDay(nil), rec.Legacy.History...)
		out.Legacy = &legacy
	}
	return out
}

func vocabularyID(rec domain.StoredRecord) uuid.UUID {
	switch {
	case rec.Review != nil:
		return rec.Review.VocabularyID
	case rec.Legacy != nil:
		return rec.Legacy.VocabularyID
	default:
		return uuid.Nil
	}
}
