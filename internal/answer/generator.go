// Package answer turns a question and its retrieved context into a model answer.
package answer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

// Options configures the completion call. Zero values fall back to domain defaults.
type Options struct {
	Model     string
	MaxTokens int
}

// Generator builds the two-role prompt and delegates to a Completer.
type Generator struct {
	completer domain.Completer
	model     string
	maxTokens int
}

// New creates a Generator.
func New(completer domain.Completer, opts Options) *Generator {
	if opts.Model == "" {
		opts.Model = domain.DefaultCompletionModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = domain.DefaultMaxTokens
	}
	return &Generator{
		completer: completer,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

// Model returns the completion model in use.
func (g *Generator) Model() string { return g.model }

// Generate asks the model to answer query using only the retrieved text.
// Errors wrap domain.ErrCompletionService.
func (g *Generator) Generate(ctx context.Context, query, retrieved string) (string, error) {
	res, err := g.completer.Complete(ctx, Prompt(g.model, g.maxTokens, query, retrieved))
	if err != nil {
		if !errors.Is(err, domain.ErrCompletionService) {
			err = fmt.Errorf("%w: %w", domain.ErrCompletionService, err)
		}
		return "", fmt.Errorf("generate answer: %w", err)
	}

	domain.UsageFromContext(ctx).AddCompletion(res.TotalTokens)
	return res.Text, nil
}

// Prompt builds the completion request for a question and its retrieved context.
// Temperature is pinned to domain.DefaultTemperature.
func Prompt(model string, maxTokens int, query, retrieved string) domain.CompletionRequest {
	return domain.CompletionRequest{
		Model: model,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: domain.SystemPrompt},
			{Role: domain.RoleUser, Content: "Context:\n" + retrieved + "\n\nQuestion: " + query},
		},
		MaxTokens:   maxTokens,
		Temperature: domain.DefaultTemperature,
	}
}
