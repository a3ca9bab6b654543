package imagesearch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nyashahama/balance-cup-backend/internal/metrics"
)

// DefaultPlaceholderURL is served whenever a keyword cannot be resolved.
const DefaultPlaceholderURL = "https://images.unsplash.com/photo-1501504905252-473c47e087f8?w=800"

// ResolverConfig tunes a Resolver. Zero values fall back to defaults.
type ResolverConfig struct {
	Attempts       int           // default 2
	AttemptTimeout time.Duration // default 5s
	Placeholder    string        // default DefaultPlaceholderURL
}

// Resolver turns keywords into URLs and always answers: each lookup is
// retried on its own and degrades to the placeholder when the budget is
// spent. A nil Searcher means no image credential is configured.
type Resolver struct {
	searcher Searcher
	cfg      ResolverConfig
	logger   *slog.Logger
}

// NewResolver builds a Resolver around searcher, which may be nil.
func NewResolver(searcher Searcher, cfg ResolverConfig, logger *slog.Logger) *Resolver {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 2
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 5 * time.Second
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholderURL
	}
	return &Resolver{searcher: searcher, cfg: cfg, logger: logger}
}

// Resolve returns an image URL for keyword, never an empty string.
func (r *Resolver) Resolve(ctx context.Context, keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if r.searcher == nil || keyword == "" {
		metrics.ImageLookups.WithLabelValues("placeholder").Inc()
		return r.cfg.Placeholder
	}

	var lastErr error
	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		u, err := r.search(ctx, keyword)
		if err == nil {
			metrics.ImageLookups.WithLabelValues("hit").Inc()
			return u
		}
		lastErr = err
		// A definitive "no results" will not change on retry.
		if errors.Is(err, ErrImageUnavailable) {
			break
		}
	}

	r.logger.Debug("imagesearch: using placeholder", "keyword", keyword, "error", lastErr)
	metrics.ImageLookups.WithLabelValues("placeholder").Inc()
	return r.cfg.Placeholder
}

func (r *Resolver) search(ctx context.Context, keyword string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.AttemptTimeout)
	defer cancel()
	return r.searcher.Search(ctx, keyword)
}
