// Package retrieve answers similarity queries over ingested chunks.
package retrieve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Service embeds a query, searches the chunk index, and enriches hits with
// source-document metadata.
type Service struct {
	embedder Embedder
	searcher Searcher
	docs     DocumentReader
	logger   *zap.Logger
}

// New creates a retrieval service.
func New(embedder Embedder, searcher Searcher, docs DocumentReader, logger *zap.Logger) *Service {
	return &Service{embedder: embedder, searcher: searcher, docs: docs, logger: logger}
}

// Retrieve returns chunks similar to the query, best first. Failures are
// returned as errors, never silently flattened into an empty result set:
// the caller must be able to tell "nothing matched" from "search broke".
func (s *Service) Retrieve(ctx context.Context, q domain.Query) ([]domain.SearchResult, error) {
	if err := q.Normalize(); err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	emb, err := s.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	results, err := s.searcher.Search(ctx, emb.Embedding, q.CollectionID, q.MaxResults, q.Threshold)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	if err = s.enrich(ctx, results); err != nil {
		return nil, err
	}

	s.logger.Debug("Retrieved chunks",
		zap.Int("results", len(results)),
		zap.String("collection_id", q.CollectionID),
	)
	return results, nil
}

// enrich overrides each hit's display metadata with the authoritative
// document record, fetched in one pipelined round trip. Hits whose document
// record is gone keep the denormalized copy stored with the chunk.
func (s *Service) enrich(ctx context.Context, results []domain.SearchResult) error {
	seen := make(map[string]bool, len(results))
	ids := make([]string, 0, len(results))
	for i := range results {
		if !seen[results[i].FileID] {
			seen[results[i].FileID] = true
			ids = append(ids, results[i].FileID)
		}
	}

	docs, err := s.docs.GetMulti(ctx, ids)
	if err != nil {
		return fmt.Errorf("enrich results: %w", err)
	}

	for i := range results {
		if doc, ok := docs[results[i].FileID]; ok {
			results[i].FileName = doc.Name
			results[i].FileSize = doc.Size
		}
	}
	return nil
}
