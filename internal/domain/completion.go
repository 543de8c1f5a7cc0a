package domain

import "context"

// Message roles for the completion service contract.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation passed to the completion service.
type Message struct {
	Role    string
	Content string
}

// CompletionOptions parameterize a single completion call. Zero values fall
// back to the provider's configured defaults.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// Completer is the text generation contract.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
}
