package retrieve

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher runs vector similarity search over stored chunks.
type Searcher interface {
	Search(
		ctx context.Context, vector []float32, collectionID string, k int, threshold float64,
	) ([]domain.SearchResult, error)
}

// DocumentReader reads source-document metadata for result enrichment.
type DocumentReader interface {
	GetMulti(ctx context.Context, ids []string) (map[string]*domain.SourceDocument, error)
}
