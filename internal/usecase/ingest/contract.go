package ingest

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/extract"
)

// Extractor turns raw file bytes into plain text.
type Extractor interface {
	Extract(data []byte, mediaType string) (extract.Result, error)
}

// Splitter cuts sanitized text into bounded chunks.
type Splitter interface {
	Split(text string) []string
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ChunkRepository writes, counts, and deletes embedded chunks.
type ChunkRepository interface {
	Put(ctx context.Context, chunks []domain.Chunk) error
	CountByFile(ctx context.Context, fileID string) (int, error)
	DeleteByDocument(ctx context.Context, fileID string) (int, error)
}

// DocumentRepository persists source-document metadata.
type DocumentRepository interface {
	Save(ctx context.Context, doc *domain.SourceDocument) error
	Get(ctx context.Context, id string) (*domain.SourceDocument, error)
	Delete(ctx context.Context, id string) error
}
