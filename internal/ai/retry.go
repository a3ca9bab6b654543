package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nyashahama/balance-cup-backend/internal/metrics"
)

// RetryPolicy bounds one logical upstream call.
type RetryPolicy struct {
	// Attempts is the total number of tries, first one included. Default: 2.
	Attempts int

	// AttemptTimeout caps each try. Zero leaves only the caller's deadline.
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy returns the production defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:       2,
		AttemptTimeout: 20 * time.Second,
	}
}

// retryingGenerator re-issues a failed call immediately, without back-off.
type retryingGenerator struct {
	inner    TextGenerator
	provider string
	policy   RetryPolicy
	logger   *slog.Logger
}

// NewRetrying wraps inner with the retry policy. provider labels logs and
// metrics, e.g. "gemini".
func NewRetrying(inner TextGenerator, provider string, policy RetryPolicy, logger *slog.Logger) TextGenerator {
	if policy.Attempts <= 0 {
		policy.Attempts = DefaultRetryPolicy().Attempts
	}
	return &retryingGenerator{
		inner:    inner,
		provider: provider,
		policy:   policy,
		logger:   logger,
	}
}

// GenerateText runs the attempts sequentially. After the last failure it
// returns ErrUpstreamUnavailable wrapping the final cause.
func (r *retryingGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		text, err := r.attempt(ctx, prompt)
		if err == nil {
			metrics.UpstreamAttempts.WithLabelValues(r.provider, "ok").Inc()
			return text, nil
		}
		lastErr = err
		metrics.UpstreamAttempts.WithLabelValues(r.provider, "error").Inc()

		r.logger.Warn("ai: attempt failed",
			"provider", r.provider,
			"attempt", attempt,
			"max", r.policy.Attempts,
			"error", err,
		)
	}

	return "", fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, r.provider, lastErr)
}

func (r *retryingGenerator) attempt(ctx context.Context, prompt string) (string, error) {
	if r.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.AttemptTimeout)
		defer cancel()
	}
	return r.inner.GenerateText(ctx, prompt)
}
