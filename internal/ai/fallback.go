package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// fallbackGenerator wraps two TextGenerators. It calls the primary first; if
// that returns an error it logs the failure and tries the secondary.
// Main wires Gemini as primary and the OpenAI-compatible client as secondary,
// each already wrapped in its own retry budget.
type fallbackGenerator struct {
	primary   TextGenerator
	secondary TextGenerator
	logger    *slog.Logger
}

// NewFallback returns a TextGenerator that calls primary and, on failure,
// falls back to secondary. If primary is nil it goes straight to secondary; if
// secondary is nil and primary fails, the primary error is returned wrapped.
func NewFallback(primary, secondary TextGenerator, logger *slog.Logger) TextGenerator {
	return &fallbackGenerator{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// GenerateText tries the primary TextGenerator. If it fails and a secondary
// is configured, it logs the primary error and tries the secondary.
func (f *fallbackGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if f.primary != nil {
		text, err := f.primary.GenerateText(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if f.secondary == nil {
			return "", fmt.Errorf("ai: primary failed and no secondary configured: %w", err)
		}
		f.logger.Warn("ai: primary generator failed, trying secondary", "error", err)
	}
	if f.secondary == nil {
		return "", fmt.Errorf("ai: no generator configured: %w", ErrUpstreamUnavailable)
	}

	return f.secondary.GenerateText(ctx, prompt)
}
