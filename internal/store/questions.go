package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/balance-cup-backend/internal/db"
	"github.com/nyashahama/balance-cup-backend/internal/round"
)

var _ round.QuestionStore = (*Store)(nil)

// ─── READS ───────────────────────────────────────────────────────────────────

// CountByTopic returns how many questions are stored for topic.
func (s *Store) CountByTopic(ctx context.Context, topic string) (int, error) {
	n, err := s.q.CountQuestionsByTopic(ctx, topic)
	if err != nil {
		return 0, fmt.Errorf("store: count %q: %w", topic, err)
	}
	return int(n), nil
}

// SampleByTopic returns up to limit stored questions for topic in random
// order.
func (s *Store) SampleByTopic(ctx context.Context, topic string, limit int) ([]round.ChoiceItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.q.SampleQuestionsByTopic(ctx, db.SampleQuestionsByTopicParams{
		Topic: topic,
		Limit: int32(min(limit, math.MaxInt32)),
	})
	if err != nil {
		return nil, fmt.Errorf("store: sample %q: %w", topic, err)
	}

	items := make([]round.ChoiceItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, toItem(r))
	}
	return items, nil
}

// TopicCounts returns the stored question count of every topic that has any.
func (s *Store) TopicCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.q.ListTopicCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list topic counts: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Topic] = int(r.Total)
	}
	return out, nil
}

// ─── WRITES ──────────────────────────────────────────────────────────────────

// SaveBatch inserts every item of b in one transaction and returns how many
// rows were new. Items whose option pair is already stored for the topic are
// skipped silently. Items with a non-UUID id get a fresh one.
func (s *Store) SaveBatch(ctx context.Context, b round.Batch) (int, error) {
	if len(b.Items) == 0 {
		return 0, nil
	}

	exclude, err := excludeContext(b.Exclude)
	if err != nil {
		return 0, err
	}

	var inserted int64
	err = s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		for _, it := range b.Items {
			id, err := uuid.Parse(it.ID)
			if err != nil {
				id = uuid.New()
			}
			topic := it.Topic
			if topic == "" {
				topic = b.Topic
			}
			n, err := q.InsertQuestion(ctx, db.InsertQuestionParams{
				ID:             id,
				Topic:          topic,
				OptionText1:    it.OptionText1,
				OptionText2:    it.OptionText2,
				Keyword1:       it.Keyword1,
				Keyword2:       it.Keyword2,
				ImageUrl1:      it.ImageURL1,
				ImageUrl2:      it.ImageURL2,
				ExcludeContext: exclude,
			})
			if err != nil {
				return fmt.Errorf("SaveBatch: insert %s: %w", id, err)
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

// ─── MAPPING ─────────────────────────────────────────────────────────────────

func toItem(q db.Question) round.ChoiceItem {
	return round.ChoiceItem{
		ID:          q.ID.String(),
		OptionText1: q.OptionText1,
		OptionText2: q.OptionText2,
		Keyword1:    q.Keyword1,
		Keyword2:    q.Keyword2,
		ImageURL1:   q.ImageUrl1,
		ImageURL2:   q.ImageUrl2,
		Topic:       q.Topic,
	}
}

func excludeContext(exclude []string) (pqtype.NullRawMessage, error) {
	if len(exclude) == 0 {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(exclude)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("store: encode exclude context: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}
