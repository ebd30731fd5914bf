package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	failAt int
	got    []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = append(s.got, text)
	if s.err != nil && len(s.got) == s.failAt {
		return EmbeddingResult{}, s.err
	}
	return s.result, nil
}

func TestBatchFallback_PreservesOrder(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{1, 0}, PromptTokens: 2, TotalTokens: 3}}

	res, err := BatchFallback(context.Background(), inner, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("embeddings = %d, want 3", len(res.Embeddings))
	}
	if got := inner.got; len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("calls = %v, want [a b c]", got)
	}
	if res.PromptTokens != 6 || res.TotalTokens != 9 {
		t.Errorf("tokens = %d/%d, want 6/9", res.PromptTokens, res.TotalTokens)
	}
}

func TestBatchFallback_StopsOnError(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr, failAt: 2}

	_, err := BatchFallback(context.Background(), inner, []string{"a", "b", "c"})
	if !errors.Is(err, innerErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if len(inner.got) != 2 {
		t.Errorf("calls = %d, want 2", len(inner.got))
	}
}

func TestBatchFallback_Empty(t *testing.T) {
	res, err := BatchFallback(context.Background(), &stubEmbedder{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 0 {
		t.Errorf("embeddings = %d, want 0", len(res.Embeddings))
	}
}

func TestTokenUsage_Concurrent(t *testing.T) {
	ctx, usage := NewContextWithUsage(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			UsageFromContext(ctx).AddEmbedding(2)
		}()
	}
	wg.Wait()
	UsageFromContext(ctx).AddCompletion(7)

	if usage.EmbeddingTokens() != 100 {
		t.Errorf("embedding tokens = %d, want 100", usage.EmbeddingTokens())
	}
	if usage.CompletionTokens() != 7 {
		t.Errorf("completion tokens = %d, want 7", usage.CompletionTokens())
	}
}

func TestTokenUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatal("expected nil usage without collector")
	}
	u.AddEmbedding(5)
	u.AddCompletion(5)
	if u.EmbeddingTokens() != 0 || u.CompletionTokens() != 0 {
		t.Error("nil usage must report zero")
	}
}
