package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
}

func withFixedClock(g *Generator) *Generator {
	g.now = fixedNow
	return g
}

func summarizerStub(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("Authorization"))

		if status >= 400 {
			http.Error(w, "nope", status)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestGenerateWithoutCredentialFallsBackToTimestamp(t *testing.T) {
	g := withFixedClock(New(Config{}))

	msg := g.Generate(context.Background(), "diff --git a/x b/x")
	require.Equal(t, SourceFallback, msg.Source)
	require.Equal(t, "2025-06-01 12:30:00", msg.Text)
	require.Equal(t, ReasonNoCredential, msg.FallbackReason)
}

func TestGenerateSummarized(t *testing.T) {
	srv := summarizerStub(t, http.StatusOK, "  Add retry logic to fetcher  ")
	defer srv.Close()

	g := New(Config{APIKey: "test-key", Endpoint: srv.URL})
	msg := g.Generate(context.Background(), "some diff")

	require.Equal(t, SourceSummarized, msg.Source)
	require.Equal(t, "Add retry logic to fetcher", msg.Text)
	require.Empty(t, msg.FallbackReason)
}

func TestGenerateCollapsesNewlines(t *testing.T) {
	srv := summarizerStub(t, http.StatusOK, "Add retry logic\nto the fetcher\n")
	defer srv.Close()

	g := New(Config{APIKey: "test-key", Endpoint: srv.URL})
	msg := g.Generate(context.Background(), "some diff")

	require.Equal(t, SourceSummarized, msg.Source)
	require.Equal(t, "Add retry logic to the fetcher", msg.Text)
}

func TestGenerateServerErrorFallsBack(t *testing.T) {
	srv := summarizerStub(t, http.StatusInternalServerError, "")
	defer srv.Close()

	g := withFixedClock(New(Config{APIKey: "test-key", Endpoint: srv.URL}))
	msg := g.Generate(context.Background(), "some diff")

	require.Equal(t, SourceFallback, msg.Source)
	require.Equal(t, "2025-06-01 12:30:00", msg.Text)
	require.Contains(t, msg.FallbackReason, "500")
}

func TestGenerateTimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	g := withFixedClock(New(Config{APIKey: "test-key", Endpoint: srv.URL, Timeout: 20 * time.Millisecond}))
	msg := g.Generate(context.Background(), "some diff")

	require.Equal(t, SourceFallback, msg.Source)
	require.Equal(t, "2025-06-01 12:30:00", msg.Text)
	require.NotEmpty(t, msg.FallbackReason)
}

func TestGenerateEmptyChoicesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	g := withFixedClock(New(Config{APIKey: "test-key", Endpoint: srv.URL}))
	msg := g.Generate(context.Background(), "some diff")

	require.Equal(t, SourceFallback, msg.Source)
	require.Contains(t, msg.FallbackReason, "no choices")
}

func TestGenerateEmptySummaryFallsBack(t *testing.T) {
	srv := summarizerStub(t, http.StatusOK, "   \n  ")
	defer srv.Close()

	g := withFixedClock(New(Config{APIKey: "test-key", Endpoint: srv.URL}))
	msg := g.Generate(context.Background(), "some diff")

	require.Equal(t, SourceFallback, msg.Source)
}
