package answer

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Retriever finds chunks relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, q domain.Query) ([]domain.SearchResult, error)
}

// Completer generates text from a chat transcript.
type Completer interface {
	Complete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (string, error)
}
