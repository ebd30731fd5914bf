package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

type mockCompleter struct {
	got    domain.CompletionRequest
	result domain.CompletionResult
	err    error
}

func (m *mockCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	m.got = req
	return m.result, m.err
}

func TestGenerate_BuildsPrompt(t *testing.T) {
	c := &mockCompleter{result: domain.CompletionResult{Text: "Blue."}}
	g := New(c, Options{})

	got, err := g.Generate(context.Background(), "What color is the sky?", "The sky is blue.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Blue." {
		t.Errorf("expected model text, got %q", got)
	}

	req := c.got
	if req.Model != domain.DefaultCompletionModel {
		t.Errorf("expected default model, got %q", req.Model)
	}
	if req.MaxTokens != 200 {
		t.Errorf("expected 200 max tokens, got %d", req.MaxTokens)
	}
	if req.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %f", req.Temperature)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != domain.RoleSystem || req.Messages[0].Content != domain.SystemPrompt {
		t.Errorf("unexpected system message: %+v", req.Messages[0])
	}

	user := req.Messages[1]
	if user.Role != domain.RoleUser {
		t.Errorf("expected user role, got %q", user.Role)
	}
	if user.Content != "Context:\nThe sky is blue.\n\nQuestion: What color is the sky?" {
		t.Errorf("unexpected user message: %q", user.Content)
	}
}

func TestGenerate_CustomOptions(t *testing.T) {
	c := &mockCompleter{}
	g := New(c, Options{Model: "gpt-4o-mini", MaxTokens: 64})

	if _, err := g.Generate(context.Background(), "q", "c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.got.Model != "gpt-4o-mini" || c.got.MaxTokens != 64 || c.got.Temperature != 0.2 {
		t.Errorf("options not applied: %+v", c.got)
	}
	if g.Model() != "gpt-4o-mini" {
		t.Errorf("Model() = %q", g.Model())
	}
}

func TestGenerate_ErrorWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	g := New(&mockCompleter{err: cause}, Options{})

	_, err := g.Generate(context.Background(), "q", "c")
	if !errors.Is(err, domain.ErrCompletionService) {
		t.Fatalf("expected ErrCompletionService, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestGenerate_RecordsUsage(t *testing.T) {
	c := &mockCompleter{result: domain.CompletionResult{Text: "ok", TotalTokens: 57}}
	g := New(c, Options{})

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := g.Generate(ctx, "q", "c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage.CompletionTokens() != 57 {
		t.Errorf("expected 57 completion tokens, got %d", usage.CompletionTokens())
	}
}
