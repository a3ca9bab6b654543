package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiClient is the concrete TextGenerator backed by the Gemini API.
type geminiClient struct {
	client *genai.Client
	model  string
}

// GeminiOptions configures NewGeminiClient. BaseURL is only set in tests.
type GeminiOptions struct {
	APIKey  string
	Model   string // e.g. "gemini-2.0-flash"
	BaseURL string
}

// NewGeminiClient returns a TextGenerator that calls Gemini generateContent.
// Per-call deadlines come from the context; the retry wrapper sets them.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (TextGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &geminiClient{client: client, model: opts.Model}, nil
}

// GenerateText sends prompt as a single user turn and returns the
// concatenated text parts of the first candidate.
func (c *geminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](1.0),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return text, nil
}
