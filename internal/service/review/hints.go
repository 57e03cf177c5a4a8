package review

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
	"github.com/heartmarshall/mykorean-backend/pkg/ctxutil"
)

// SelectChatHints samples vocabulary the conversation generator should try
// to weave into the chat. Due words are preferred; when nothing is due the
// sample falls back to unstudied words. The sample is drawn once per session
// and reused until EndHintSession; words held by other open sessions are
// excluded so overlapping chats never push the same hint.
func (s *Service) SelectChatHints(ctx context.Context, input SelectChatHintsInput) ([]domain.VocabularyItem, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNoLearner
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if sample, open := s.hintSessions[input.SessionID]; open {
		out := make([]domain.VocabularyItem, len(sample))
		copy(out, sample)
		return out, nil
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.cfg.ChatHintLimit
	}

	records, err := s.loadLearnerRecords(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	items, err := s.vocab.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	itemByID := make(map[uuid.UUID]domain.VocabularyItem, len(items))
	for _, item := range items {
		itemByID[item.ID] = item
	}

	taken := s.activeHintIDs()
	now := s.now()

	var pool []domain.VocabularyItem
	tracked := make(map[uuid.UUID]struct{}, len(records))
	for _, rec := range records {
		if rec.IsNew() {
			continue
		}
		tracked[rec.VocabularyID] = struct{}{}
		if !rec.IsDue(now) {
			continue
		}
		if _, held := taken[rec.VocabularyID]; held {
			continue
		}
		item, exists := itemByID[rec.VocabularyID]
		if !exists {
			// A record without a backing item is never surfaced.
			s.log.WarnContext(ctx, "due record has no vocabulary item",
				slog.String("vocabulary_id", rec.VocabularyID.String()),
			)
			continue
		}
		pool = append(pool, item)
	}

	if len(pool) == 0 {
		for _, item := range items {
			if _, seen := tracked[item.ID]; seen {
				continue
			}
			if _, held := taken[item.ID]; held {
				continue
			}
			pool = append(pool, item)
		}
	}

	sample := make([]domain.VocabularyItem, 0, limit)
	for _, idx := range s.rng.Perm(len(pool)) {
		if len(sample) == limit {
			break
		}
		sample = append(sample, pool[idx])
	}

	s.hintSessions[input.SessionID] = sample

	s.log.InfoContext(ctx, "chat hints selected",
		slog.String("learner_id", learnerID.String()),
		slog.String("session_id", input.SessionID.String()),
		slog.Int("pool_size", len(pool)),
		slog.Int("sample_size", len(sample)),
	)

	out := make([]domain.VocabularyItem, len(sample))
	copy(out, sample)
	return out, nil
}

// EndHintSession releases a session's hints so later sessions may sample
// them again. Ending an unknown session is a no-op.
func (s *Service) EndHintSession(ctx context.Context, sessionID uuid.UUID) {
	if _, open := s.hintSessions[sessionID]; !open {
		return
	}
	delete(s.hintSessions, sessionID)
	s.log.InfoContext(ctx, "hint session ended",
		slog.String("session_id", sessionID.String()),
	)
}

// activeHintIDs collects the vocabulary ids held by all open sessions.
func (s *Service) activeHintIDs() map[uuid.UUID]struct{} {
	taken := make(map[uuid.UUID]struct{})
	for _, sample := range s.hintSessions {
		for _, item := range sample {
			taken[item.ID] = struct{}{}
		}
	}
	return taken
}
