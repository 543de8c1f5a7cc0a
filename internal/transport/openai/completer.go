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

// Completion defaults; configuration, not hidden constants.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
	Provider    string
	Logger      *zap.Logger
}

// Completer generates text via an OpenAI-compatible chat completion API.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	maxRetries  int
	provider    string
	logger      *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Completer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Complete implements domain.Completer. Zero option fields fall back to the
// configured defaults.
func (c *Completer) Complete(
	ctx context.Context, messages []domain.Message, opts domain.CompletionOptions,
) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to complete: %w", domain.ErrProviderError)
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = c.temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(messages),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var answer string
	err := withRetries(ctx, c.maxRetries, c.logger, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, callErr := c.client.CreateChatCompletion(ctx, req)
		if callErr != nil {
			metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
			return mapAPIError(callErr, "completion")
		}
		if len(resp.Choices) == 0 {
			metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
			return fmt.Errorf("empty completion response: %w", domain.ErrProviderError)
		}

		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
		answer = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
