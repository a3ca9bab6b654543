package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nyashahama/balance-cup-backend/internal/ai"
	"github.com/nyashahama/balance-cup-backend/internal/imagesearch"
	"github.com/nyashahama/balance-cup-backend/internal/metrics"
)

// Options holds the optional collaborators and tuning of a Generator. Every
// collaborator may be nil; the generator then skips that stage.
type Options struct {
	Cache     Cache
	Store     QuestionStore
	Persister Persister

	// Policy applies only when Store is set. Zero value → DefaultSourcingPolicy.
	Policy SourcingPolicy

	// MaxCount caps Request.Count. Default 64.
	MaxCount int

	// ImageConcurrency caps in-flight image lookups per call. 0 = unlimited.
	ImageConcurrency int

	// NewID mints item ids. Default uuid.NewString.
	NewID func() string
}

// Generator produces the items for a round. Safe for concurrent use.
type Generator struct {
	text   ai.TextGenerator
	images *imagesearch.Resolver
	opts   Options
	logger *slog.Logger
}

// NewGenerator wires a Generator. text and images are required.
func NewGenerator(text ai.TextGenerator, images *imagesearch.Resolver, opts Options, logger *slog.Logger) *Generator {
	if opts.Policy == (SourcingPolicy{}) {
		opts.Policy = DefaultSourcingPolicy()
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = 64
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Generator{
		text:   text,
		images: images,
		opts:   opts,
		logger: logger,
	}
}

// Generate returns req.Count items for req.Topic:
//
//  1. Serve from the cache when it holds enough; top it up when it holds some.
//  2. On a miss, reuse stored questions according to the sourcing policy.
//  3. Generate the remainder fresh: upstream text → drafts → images.
//  4. Cache the result and hand fresh items to the persister.
//  5. If nothing could be produced, serve FallbackItems.
//
// The only error is ErrInvalidRequest. A short upstream list is returned as
// is; the result is never padded with fallback content.
func (g *Generator) Generate(ctx context.Context, req Request) ([]ChoiceItem, error) {
	req.Topic = NormalizeTopic(req.Topic)
	if err := g.validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.GenerateDuration.Observe(time.Since(start).Seconds()) }()

	log := g.logger.With("topic", req.Topic, "count", req.Count)

	// ── 1. Cache ──────────────────────────────────────────────────────────────
	cached := g.fromCache(ctx, req.Topic, log)
	if len(cached) >= req.Count {
		log.Debug("round: cache hit", "cached", len(cached))
		metrics.RoundsServed.WithLabelValues(string(SourceCache)).Inc()
		return cloneItems(cached[:req.Count]), nil
	}

	var (
		items  []ChoiceItem
		source Source
	)

	if len(cached) > 0 {
		// Insufficient entry: keep what is cached, generate only the shortfall.
		exclude := append(cloneStrings(req.Exclude), optionTexts(cached)...)
		fresh, err := g.fresh(ctx, req.Topic, req.Count-len(cached), exclude, log)
		if err != nil {
			log.Warn("round: cache top-up failed", "cached", len(cached), "error", err)
		}
		items = append(cloneItems(cached), fresh...)
		source = SourceMixed
	} else {
		// ── 2. Persisted store ────────────────────────────────────────────────
		reused := g.fromStore(ctx, req.Topic, req.Count, log)

		// ── 3. Fresh generation ───────────────────────────────────────────────
		var fresh []ChoiceItem
		if need := req.Count - len(reused); need > 0 {
			exclude := append(cloneStrings(req.Exclude), optionTexts(reused)...)
			var err error
			fresh, err = g.fresh(ctx, req.Topic, need, exclude, log)
			if err != nil {
				log.Warn("round: fresh generation failed", "reused", len(reused), "error", err)
			}
		}
		items = append(reused, fresh...)

		switch {
		case len(fresh) == 0:
			source = SourceStore
		case len(reused) == 0:
			source = SourceFresh
		default:
			source = SourceMixed
		}
	}

	// ── 5. Fallback ───────────────────────────────────────────────────────────
	if len(items) == 0 {
		log.Warn("round: serving fallback item")
		metrics.RoundsServed.WithLabelValues(string(SourceFallback)).Inc()
		return FallbackItems(req.Topic), nil
	}
	if len(items) < req.Count {
		log.Warn("round: upstream returned fewer items than requested", "got", len(items))
	}

	// ── 4. Cache population ───────────────────────────────────────────────────
	g.toCache(ctx, req.Topic, items, log)

	log.Info("round: served", "source", source, "items", len(items))
	metrics.RoundsServed.WithLabelValues(string(source)).Inc()
	return items, nil
}

// Refill generates n fresh items for topic and hands them to the persister,
// bypassing cache and store reuse. It returns how many items were produced.
// Used to keep the store stocked for popular topics.
func (g *Generator) Refill(ctx context.Context, topic string, n int) (int, error) {
	topic = NormalizeTopic(topic)
	if topic == "" || n <= 0 {
		return 0, fmt.Errorf("%w: refill needs a topic and a positive count", ErrInvalidRequest)
	}
	n = min(n, g.opts.MaxCount)
	log := g.logger.With("topic", topic, "refill", n)

	// Steer the upstream away from what the store already holds.
	var exclude []string
	if g.opts.Store != nil {
		recent, err := g.opts.Store.SampleByTopic(ctx, topic, 20)
		if err != nil {
			log.Warn("round: refill could not sample store", "error", err)
		}
		exclude = optionTexts(recent)
	}

	items, err := g.fresh(ctx, topic, n, exclude, log)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// ─── STAGES ──────────────────────────────────────────────────────────────────

func (g *Generator) validate(req Request) error {
	switch {
	case req.Topic == "":
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	case req.Count < 2:
		return fmt.Errorf("%w: count must be at least 2, got %d", ErrInvalidRequest, req.Count)
	case req.Count > g.opts.MaxCount:
		return fmt.Errorf("%w: count must be at most %d, got %d", ErrInvalidRequest, g.opts.MaxCount, req.Count)
	}
	return nil
}

func (g *Generator) fromCache(ctx context.Context, topic string, log *slog.Logger) []ChoiceItem {
	if g.opts.Cache == nil {
		return nil
	}
	items, ok, err := g.opts.Cache.Get(ctx, topic)
	if err != nil {
		log.Warn("round: cache read failed", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return items
}

func (g *Generator) toCache(ctx context.Context, topic string, items []ChoiceItem, log *slog.Logger) {
	if g.opts.Cache == nil {
		return
	}
	if err := g.opts.Cache.Put(ctx, topic, cloneItems(items)); err != nil {
		log.Warn("round: cache write failed", "error", err)
	}
}

func (g *Generator) fromStore(ctx context.Context, topic string, count int, log *slog.Logger) []ChoiceItem {
	if g.opts.Store == nil {
		return nil
	}
	stored, err := g.opts.Store.CountByTopic(ctx, topic)
	if err != nil {
		log.Warn("round: store count failed", "error", err)
		return nil
	}
	reuse := g.opts.Policy.Reuse(stored, count)
	if reuse == 0 {
		return nil
	}
	items, err := g.opts.Store.SampleByTopic(ctx, topic, reuse)
	if err != nil {
		log.Warn("round: store sample failed", "error", err)
		return nil
	}
	log.Debug("round: reusing stored questions", "stored", stored, "reused", len(items))
	return items[:min(len(items), reuse)]
}

// fresh asks the upstream for n items and enriches them. It returns an error
// only when the upstream is unavailable; a malformed reply yields no items.
func (g *Generator) fresh(ctx context.Context, topic string, n int, exclude []string, log *slog.Logger) ([]ChoiceItem, error) {
	text, err := g.text.GenerateText(ctx, BuildPrompt(topic, n, exclude))
	if err != nil {
		return nil, err
	}

	drafts, err := ParseDrafts(text)
	if err != nil {
		if errors.Is(err, ai.ErrMalformedResponse) {
			metrics.MalformedResponses.Inc()
		}
		log.Warn("round: discarding upstream reply", "error", err)
		return nil, nil
	}
	if len(drafts) > n {
		drafts = drafts[:n]
	}
	if len(drafts) == 0 {
		return nil, nil
	}

	items := g.enrich(ctx, topic, drafts)
	g.persist(ctx, Batch{Topic: topic, Items: cloneItems(items), Exclude: cloneStrings(exclude)}, log)
	return items, nil
}

// enrich resolves both keywords of every draft concurrently. Each goroutine
// writes one field of one item, so no locking is needed.
func (g *Generator) enrich(ctx context.Context, topic string, drafts []Draft) []ChoiceItem {
	items := make([]ChoiceItem, len(drafts))

	var eg errgroup.Group
	if g.opts.ImageConcurrency > 0 {
		eg.SetLimit(g.opts.ImageConcurrency)
	}
	for i, d := range drafts {
		items[i] = ChoiceItem{
			ID:          g.opts.NewID(),
			OptionText1: d.OptionText1,
			OptionText2: d.OptionText2,
			Keyword1:    d.Keyword1,
			Keyword2:    d.Keyword2,
			Topic:       topic,
		}
		item := &items[i]
		eg.Go(func() error {
			item.ImageURL1 = g.images.Resolve(ctx, d.Keyword1)
			return nil
		})
		eg.Go(func() error {
			item.ImageURL2 = g.images.Resolve(ctx, d.Keyword2)
			return nil
		})
	}
	_ = eg.Wait() // lookups never return errors

	return items
}

func (g *Generator) persist(ctx context.Context, batch Batch, log *slog.Logger) {
	if g.opts.Persister == nil {
		return
	}
	if err := g.opts.Persister.Enqueue(ctx, batch); err != nil {
		log.Warn("round: could not enqueue items for persistence", "items", len(batch.Items), "error", err)
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
