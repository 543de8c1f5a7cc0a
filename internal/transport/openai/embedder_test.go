package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tc := range cases {
		if got := EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%d chars): expected %d, got %d", len(tc.text), tc.want, got)
		}
	}
}

func embeddingJSON(vector []float32, promptTokens int) string {
	b, _ := json.Marshal(map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"object": "embedding", "index": 0, "embedding": vector},
		},
		"model": "text-embedding-3-small",
		"usage": map[string]int{"prompt_tokens": promptTokens, "total_tokens": promptTokens},
	})
	return string(b)
}

func newStubEmbedder(t *testing.T, handler http.HandlerFunc, dimensions int) *Embedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/v1",
		Model:      "text-embedding-3-small",
		Dimensions: dimensions,
		Provider:   "openai",
	})
}

func TestEmbed_Success(t *testing.T) {
	var gotBody map[string]any
	e := newStubEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(embeddingJSON([]float32{0.1, 0.2, 0.3}, 7)))
	}, 3)

	res, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(res.Embedding))
	}
	if res.TotalTokens != 7 {
		t.Errorf("expected 7 total tokens, got %d", res.TotalTokens)
	}
	if gotBody["model"] != "text-embedding-3-small" {
		t.Errorf("unexpected model in request: %v", gotBody["model"])
	}
	inputs, _ := gotBody["input"].([]any)
	if len(inputs) != 1 || inputs[0] != "some text" {
		t.Errorf("unexpected input in request: %v", gotBody["input"])
	}
}

func TestEmbed_TokenCeilingRejectsLocally(t *testing.T) {
	e := newStubEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected for oversized input")
	}, 0)

	// Well past the default 7000-token ceiling at ~4 chars per token.
	_, err := e.Embed(context.Background(), strings.Repeat("a", 40000))
	if !errors.Is(err, domain.ErrChunkTooLarge) {
		t.Errorf("expected ErrChunkTooLarge, got %v", err)
	}
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	var calls atomic.Int32
	e := newStubEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(embeddingJSON([]float32{0.1, 0.2}, 3)))
	}, 1536)

	_, err := e.Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	// Not retryable: wrong dimensionality will not fix itself.
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestEmbed_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	e := newStubEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"transient","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(embeddingJSON([]float32{0.5}, 2)))
	}, 1)

	res, err := e.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("expected a vector, got %v", res.Embedding)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func TestHealthCheck(t *testing.T) {
	healthy := newStubEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}, 0)
	if err := healthy.HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	down := newStubEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 0)
	if err := down.HealthCheck(context.Background()); err == nil {
		t.Error("expected error from unhealthy provider")
	}
}
