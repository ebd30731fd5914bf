package present

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

func TestAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
		want   string
	}{
		{"success", "Paris.", nil, "Paris."},
		{"empty answer", "", nil, ""},
		{
			"completion",
			"",
			fmt.Errorf("generate answer: %w", domain.ErrCompletionService),
			"OpenAI error: generate answer: completion service error",
		},
		{
			"embedding",
			"",
			fmt.Errorf("embed query: %w", domain.ErrEmbeddingService),
			"Embedding error: embed query: embedding service error",
		},
		{"other", "", errors.New("timeout"), "Error: timeout"},
		{
			"dimension",
			"",
			domain.NewDimensionMismatch(3, 2),
			"Error: vector dimension mismatch: want 3, got 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Answer(tt.answer, tt.err); got != tt.want {
				t.Errorf("Answer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadFailed(t *testing.T) {
	err := domain.NewExtractionError("a.pdf", errors.New("open PDF: no such file"))
	want := "❌ extraction failed: a.pdf: open PDF: no such file"
	if got := LoadFailed(err); got != want {
		t.Errorf("LoadFailed() = %q, want %q", got, want)
	}
}
