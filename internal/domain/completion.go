package domain

import "context"

// Role is the author of a chat message.
type Role string

const (
	// RoleSystem carries fixed assistant instructions.
	RoleSystem Role = "system"
	// RoleUser carries the caller's message.
	RoleUser Role = "user"
)

// Message is a single chat turn sent to the completion service.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a provider-neutral chat completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// CompletionResult carries the generated text and token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer generates text for an ordered list of messages.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
