package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/quartz"

	"github.com/nyashahama/balance-cup-backend/internal/round"
)

// Refiller generates and persists fresh items for one topic. *round.Generator
// satisfies it.
type Refiller interface {
	Refill(ctx context.Context, topic string, n int) (int, error)
}

// TopicCounter reports stored question counts. *store.Store satisfies it.
type TopicCounter interface {
	TopicCounts(ctx context.Context) (map[string]int, error)
}

// WarmerConfig tunes the Warmer.
type WarmerConfig struct {
	Topics   []string
	Interval time.Duration // default 10m
	Batch    int           // items per refill, default 8
	Target   int           // refill topics holding fewer than this, default 100
}

// Warmer periodically refills configured topics whose stored question count
// is below Target, so requests for them are served from the store.
type Warmer struct {
	refiller Refiller
	counter  TopicCounter
	cfg      WarmerConfig
	clock    quartz.Clock
	logger   *slog.Logger
}

// NewWarmer constructs a Warmer. Call Start() to begin polling.
func NewWarmer(refiller Refiller, counter TopicCounter, cfg WarmerConfig, clock quartz.Clock, logger *slog.Logger) *Warmer {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 8
	}
	if cfg.Target <= 0 {
		cfg.Target = 100
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Warmer{refiller: refiller, counter: counter, cfg: cfg, clock: clock, logger: logger}
}

// Start runs one warm pass immediately and then one per Interval. It blocks
// until ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) {
	if len(w.cfg.Topics) == 0 {
		return
	}
	w.logger.Info("warmer: starting", "topics", w.cfg.Topics, "interval", w.cfg.Interval)

	ticker := w.clock.NewTicker(w.cfg.Interval, "warmer")
	defer ticker.Stop()

	w.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("warmer: stopped")
			return
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

func (w *Warmer) pollOnce(ctx context.Context) {
	counts, err := w.counter.TopicCounts(ctx)
	if err != nil {
		w.logger.Error("warmer: count failed", "error", err)
		return
	}

	for _, topic := range w.cfg.Topics {
		if ctx.Err() != nil {
			return
		}
		have := counts[round.NormalizeTopic(topic)]
		if have >= w.cfg.Target {
			continue
		}
		n, err := w.refiller.Refill(ctx, topic, w.cfg.Batch)
		if err != nil {
			w.logger.Warn("warmer: refill failed", "topic", topic, "stored", have, "error", err)
			continue
		}
		w.logger.Info("warmer: refilled topic", "topic", topic, "stored", have, "generated", n)
	}
}
