// Package ai defines the interface for upstream text generation and provides
// Gemini and OpenAI-compatible implementations, plus the retry and fallback
// wrappers the round generator stacks on top of them.
package ai

import (
	"context"
	"errors"
)

// TextGenerator is the interface the round generator uses to turn one
// natural-language instruction into free-form model output.
//
// Implementations must be safe to call concurrently. A non-nil error means the
// call produced no usable text; callers decide whether to retry.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ─── ERRORS ──────────────────────────────────────────────────────────────────

var (
	// ErrUpstreamUnavailable wraps the last failure once the retry budget is
	// spent. The round generator recovers from it with the fallback item.
	ErrUpstreamUnavailable = errors.New("ai: upstream unavailable")

	// ErrMalformedResponse marks model output that contained no parseable
	// item list.
	ErrMalformedResponse = errors.New("ai: malformed response")

	// ErrEmptyResponse is returned by a client when the upstream answered
	// successfully but with no text.
	ErrEmptyResponse = errors.New("ai: empty response")
)
