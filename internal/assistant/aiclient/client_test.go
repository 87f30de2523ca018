package aiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(Config{
		Endpoint: url,
		APIKey:   "test-key",
		Model:    "test-model",
		Timeout:  2 * time.Second,
	})
}

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  structured answer  "}},
			},
		})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Generate(context.Background(), Request{
		SystemPrompt: "persona",
		Conversation: "User: hi",
	})

	require.NoError(t, err)
	assert.Equal(t, "structured answer", got)
}

func TestGenerateRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), Request{Conversation: "q"})

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 2*time.Second, rle.RetryAfter)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), Request{Conversation: "q"})

	require.Error(t, err)
	var rle *RateLimitError
	assert.False(t, errors.As(err, &rle))
	assert.Contains(t, err.Error(), "status 500")
}

func TestGenerateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), Request{Conversation: "q"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestGenerateEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), Request{Conversation: "q"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion")
}

func TestGenerateMissingAPIKey(t *testing.T) {
	c := NewHTTPClient(Config{Endpoint: "http://example.invalid"})

	_, err := c.Generate(context.Background(), Request{Conversation: "q"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestGenerateContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).Generate(ctx, Request{Conversation: "q"})
	require.Error(t, err)
}
