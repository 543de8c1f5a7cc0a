// Package answer generates completions grounded in retrieved document chunks.
package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Request is one question to answer against the ingested corpus.
type Request struct {
	Question     string
	CollectionID string
	MaxResults   int
	Threshold    float64
	Temperature  float32 // 0 uses the provider default
	MaxTokens    int     // 0 uses the provider default
}

// Response carries the generated answer and the chunks it was grounded in.
// Sources is empty when nothing relevant was found and the model was told so.
type Response struct {
	Answer  string
	Sources []domain.SearchResult
}

// Service wires retrieval into completion.
type Service struct {
	retriever Retriever
	completer Completer
	logger    *zap.Logger
}

// New creates an answer service.
func New(retriever Retriever, completer Completer, logger *zap.Logger) *Service {
	return &Service{retriever: retriever, completer: completer, logger: logger}
}

// Answer retrieves chunks for the question and asks the model to answer
// from them. With zero relevant chunks the model is instructed to admit it,
// not left to hallucinate from an empty excerpt list.
func (s *Service) Answer(ctx context.Context, req *Request) (*Response, error) {
	results, err := s.retriever.Retrieve(ctx, domain.Query{
		Text:         req.Question,
		CollectionID: req.CollectionID,
		MaxResults:   req.MaxResults,
		Threshold:    req.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	system := noContentPrompt
	if len(results) > 0 {
		system = groundedPrompt(results)
	}

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: req.Question},
	}

	text, err := s.completer.Complete(ctx, messages, domain.CompletionOptions{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Debug("Generated answer",
		zap.Int("sources", len(results)),
		zap.Bool("grounded", len(results) > 0),
	)
	return &Response{Answer: text, Sources: results}, nil
}
