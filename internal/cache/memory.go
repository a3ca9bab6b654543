// Package cache holds generated rounds per topic so repeat requests skip the
// text and image upstreams. Memory is the single-process default; Redis shares
// entries across replicas.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/nyashahama/balance-cup-backend/internal/round"
)

var _ round.Cache = (*Memory)(nil)

type entry struct {
	items   []round.ChoiceItem
	expires time.Time // zero = never
}

// Memory is an in-process round cache guarded by a RWMutex. Entries are
// copied on the way in and out so callers never share backing arrays.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	clock   quartz.Clock
}

// NewMemory returns an empty cache. ttl <= 0 keeps entries for the life of
// the process.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   quartz.NewReal(),
	}
}

func (m *Memory) Get(_ context.Context, topic string) ([]round.ChoiceItem, bool, error) {
	key := normalize(topic)

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.clock.Now().Before(e.expires) {
		m.mu.Lock()
		// Re-check: a concurrent Put may have refreshed the entry.
		if cur, ok := m.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return clone(e.items), true, nil
}

func (m *Memory) Put(_ context.Context, topic string, items []round.ChoiceItem) error {
	e := entry{items: clone(items)}
	if m.ttl > 0 {
		e.expires = m.clock.Now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[normalize(topic)] = e
	m.mu.Unlock()
	return nil
}

// Len reports the number of topics currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func normalize(topic string) string {
	return round.NormalizeTopic(topic)
}

func clone(items []round.ChoiceItem) []round.ChoiceItem {
	out := make([]round.ChoiceItem, len(items))
	copy(out, items)
	return out
}
