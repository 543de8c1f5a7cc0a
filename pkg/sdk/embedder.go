package ragdex

import "context"

// Embedder converts text to vector embeddings. Required for ingestion and
// retrieval; metadata-only operations work without it.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Completer generates text from a chat transcript. Required only for Answer.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
}

// Message is one turn of a conversation passed to the completion provider.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// CompletionOptions parameterize a single completion call. Zero values fall
// back to the provider's defaults.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}
