package ragchat

import "context"

// Embedder converts text to a vector embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Message is one chat message sent to a Completer.
type Message struct {
	Role    string // "system" or "user"
	Content string
}

// CompletionRequest is a chat completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Completion is the generated answer and its token usage.
type Completion struct {
	Text        string
	TotalTokens int
}

// Completer generates chat completions.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
