// Package openai provides the embedding and completion providers over any
// OpenAI-compatible API.
package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// Defaults for provider limits.
const (
	DefaultTokenCeiling = 7000
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 3
)

// Config holds the embedding provider settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Dimensions   int // expected vector dimensionality; 0 disables the check
	TokenCeiling int // estimated-token hard limit per input
	Timeout      time.Duration
	MaxRetries   int
	Provider     string // label for logs and metrics
	Logger       *zap.Logger
}

func (c *Config) applyDefaults() {
	if c.TokenCeiling <= 0 {
		c.TokenCeiling = DefaultTokenCeiling
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Embedder is an embedding provider using an OpenAI-compatible API.
type Embedder struct {
	client       *openai.Client
	model        openai.EmbeddingModel
	dimensions   int
	tokenCeiling int
	timeout      time.Duration
	maxRetries   int
	provider     string
	logger       *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	cfg.applyDefaults()

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Embedder{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        openai.EmbeddingModel(cfg.Model),
		dimensions:   cfg.Dimensions,
		tokenCeiling: cfg.TokenCeiling,
		timeout:      cfg.Timeout,
		maxRetries:   cfg.MaxRetries,
		provider:     cfg.Provider,
		logger:       cfg.Logger,
	}
}

// EstimateTokens approximates the token count of text as ceil(len/4).
// Deliberately crude: it exists to stay clear of provider-side hard limits
// without shipping a real tokenizer.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// Embed implements domain.Embedder. Inputs over the token ceiling are
// rejected locally with ErrChunkTooLarge before any API call. Retryable
// provider failures are retried with exponential backoff.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if est := EstimateTokens(text); est > e.tokenCeiling {
		return domain.EmbeddingResult{}, fmt.Errorf(
			"estimated %d tokens exceeds ceiling %d: %w", est, e.tokenCeiling, domain.ErrChunkTooLarge,
		)
	}

	var result domain.EmbeddingResult
	err := withRetries(ctx, e.maxRetries, e.logger, func(ctx context.Context) error {
		var callErr error
		result, callErr = e.embedOnce(ctx, text)
		return callErr
	})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return result, nil
}

func (e *Embedder) embedOnce(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		mapped := mapAPIError(err, "embedding")
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		return domain.EmbeddingResult{}, mapped
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrProviderError)
	}

	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf(
			"got %d dimensions, want %d: %w", len(vec), e.dimensions, domain.ErrVectorDimMismatch,
		)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, string(e.model)).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.
			WithLabelValues(e.provider, string(e.model), "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.
			WithLabelValues(e.provider, string(e.model), "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
