// Package imagesearch resolves a single search keyword to a display image URL.
package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Searcher looks up the first image for a keyword.
// Implementations must be safe to call concurrently.
type Searcher interface {
	Search(ctx context.Context, keyword string) (string, error)
}

// ErrImageUnavailable is returned when a lookup produced no usable URL. The
// Resolver never lets it escape; it substitutes the placeholder instead.
var ErrImageUnavailable = errors.New("imagesearch: image unavailable")

// DefaultBaseURL is the public Unsplash API root.
const DefaultBaseURL = "https://api.unsplash.com"

// unsplashClient is the concrete Searcher backed by the Unsplash search API.
type unsplashClient struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
}

// NewUnsplashClient returns a Searcher that calls GET /search/photos.
//   - accessKey: your UNSPLASH_ACCESS_KEY
//   - baseURL:   DefaultBaseURL outside of tests
func NewUnsplashClient(accessKey, baseURL string) Searcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &unsplashClient{
		accessKey: accessKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ─── UNSPLASH API SHAPES ─────────────────────────────────────────────────────

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
	Errors []string `json:"errors"`
}

// ─── IMPLEMENTATION ──────────────────────────────────────────────────────────

// Search returns results[0].urls.regular for the keyword.
func (c *unsplashClient) Search(ctx context.Context, keyword string) (string, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("unsplash: build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("unsplash: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unsplash: unexpected status %d: %.200s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unsplash: unmarshal response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return "", fmt.Errorf("unsplash: API error: %s", strings.Join(parsed.Errors, "; "))
	}
	if len(parsed.Results) == 0 || parsed.Results[0].URLs.Regular == "" {
		return "", fmt.Errorf("unsplash: no result for %q: %w", keyword, ErrImageUnavailable)
	}

	return parsed.Results[0].URLs.Regular, nil
}
