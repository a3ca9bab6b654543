package imagesearch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/balance-cup-backend/internal/imagesearch"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSearcher struct {
	url   string
	err   error
	calls atomic.Int32
}

func (s *stubSearcher) Search(_ context.Context, _ string) (string, error) {
	s.calls.Add(1)
	return s.url, s.err
}

// ─── Unsplash client ──────────────────────────────────────────────────────────

func TestUnsplash_FirstResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "ramen", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Client-ID key-123", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"results":[{"urls":{"regular":"https://img.test/ramen.jpg"}},{"urls":{"regular":"https://img.test/other.jpg"}}]}`)
	}))
	defer srv.Close()

	u, err := imagesearch.NewUnsplashClient("key-123", srv.URL+"/").Search(context.Background(), "ramen")
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/ramen.jpg", u)
}

func TestUnsplash_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total":0,"results":[]}`)
	}))
	defer srv.Close()

	_, err := imagesearch.NewUnsplashClient("k", srv.URL).Search(context.Background(), "zzz")
	assert.ErrorIs(t, err, imagesearch.ErrImageUnavailable)
}

func TestUnsplash_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"errors":["OAuth error: The access token is invalid"]}`)
	}))
	defer srv.Close()

	_, err := imagesearch.NewUnsplashClient("bad", srv.URL).Search(context.Background(), "cat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

// ─── Resolver ─────────────────────────────────────────────────────────────────

func TestResolver_Hit(t *testing.T) {
	s := &stubSearcher{url: "https://img.test/a.jpg"}
	r := imagesearch.NewResolver(s, imagesearch.ResolverConfig{}, discardLogger())

	assert.Equal(t, "https://img.test/a.jpg", r.Resolve(context.Background(), "apple"))
	assert.EqualValues(t, 1, s.calls.Load())
}

func TestResolver_TransientFailureRetriesThenPlaceholder(t *testing.T) {
	s := &stubSearcher{err: errors.New("connection reset")}
	r := imagesearch.NewResolver(s, imagesearch.ResolverConfig{Attempts: 3, Placeholder: "https://ph.test/x.jpg"}, discardLogger())

	assert.Equal(t, "https://ph.test/x.jpg", r.Resolve(context.Background(), "apple"))
	assert.EqualValues(t, 3, s.calls.Load())
}

func TestResolver_NoResultDoesNotRetry(t *testing.T) {
	s := &stubSearcher{err: imagesearch.ErrImageUnavailable}
	r := imagesearch.NewResolver(s, imagesearch.ResolverConfig{Attempts: 3}, discardLogger())

	assert.Equal(t, imagesearch.DefaultPlaceholderURL, r.Resolve(context.Background(), "apple"))
	assert.EqualValues(t, 1, s.calls.Load())
}

func TestResolver_NoSearcherOrKeyword(t *testing.T) {
	r := imagesearch.NewResolver(nil, imagesearch.ResolverConfig{}, discardLogger())
	assert.Equal(t, imagesearch.DefaultPlaceholderURL, r.Resolve(context.Background(), "apple"))

	s := &stubSearcher{url: "https://img.test/a.jpg"}
	r = imagesearch.NewResolver(s, imagesearch.ResolverConfig{}, discardLogger())
	assert.Equal(t, imagesearch.DefaultPlaceholderURL, r.Resolve(context.Background(), "   "))
	assert.EqualValues(t, 0, s.calls.Load())
}
