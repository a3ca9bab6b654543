// Package round acquires the choice items for one tournament: it serves them
// from a cache or the persisted question store when it can, asks the text
// upstream for fresh ones when it must, enriches every item with two images,
// and falls back to a fixed item when the upstream cannot be reached.
//
// Dependency rule: round imports ai, imagesearch and metrics only. Cache,
// store and worker implementations import round for its types and satisfy the
// interfaces declared here.
package round

import (
	"context"
	"errors"
	"strings"
)

// ChoiceItem is one "this or that" question. Immutable once returned.
type ChoiceItem struct {
	ID          string `json:"id"`
	OptionText1 string `json:"optionText1"`
	OptionText2 string `json:"optionText2"`
	Keyword1    string `json:"keyword1"`
	Keyword2    string `json:"keyword2"`
	ImageURL1   string `json:"imageUrl1"`
	ImageURL2   string `json:"imageUrl2"`
	Topic       string `json:"topic"`
}

// NormalizeTopic is the canonical form of a topic used for every cache and
// store lookup: trimmed and lower-cased.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// Request is the caller-facing input of Generate.
type Request struct {
	Topic   string   `json:"topic"`
	Count   int      `json:"count"`
	Exclude []string `json:"exclude"`
}

// Batch is a set of freshly generated items handed off for persistence.
type Batch struct {
	Topic   string
	Items   []ChoiceItem
	Exclude []string
}

// ─── COLLABORATORS ───────────────────────────────────────────────────────────

// Cache is the process-scoped key-value cache of generated rounds, keyed by
// topic. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, topic string) ([]ChoiceItem, bool, error)
	Put(ctx context.Context, topic string, items []ChoiceItem) error
}

// QuestionStore is the persisted, topic-indexed question bank.
type QuestionStore interface {
	CountByTopic(ctx context.Context, topic string) (int, error)
	// SampleByTopic returns up to limit stored items in random order.
	SampleByTopic(ctx context.Context, topic string, limit int) ([]ChoiceItem, error)
}

// Persister accepts fresh items for asynchronous, best-effort storage.
// Enqueue must not block on I/O.
type Persister interface {
	Enqueue(ctx context.Context, batch Batch) error
}

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrInvalidRequest is the only error Generate returns. Upstream failures are
// absorbed into a degraded result.
var ErrInvalidRequest = errors.New("round: invalid request")

// ─── SOURCES ─────────────────────────────────────────────────────────────────

// Source labels where a served round came from, for logs and metrics.
type Source string

const (
	SourceCache    Source = "cache"
	SourceStore    Source = "store"
	SourceFresh    Source = "fresh"
	SourceMixed    Source = "mixed"
	SourceFallback Source = "fallback"
)

func cloneItems(items []ChoiceItem) []ChoiceItem {
	out := make([]ChoiceItem, len(items))
	copy(out, items)
	return out
}

func optionTexts(items []ChoiceItem) []string {
	out := make([]string, 0, len(items)*2)
	for _, it := range items {
		out = append(out, it.OptionText1, it.OptionText2)
	}
	return out
}
