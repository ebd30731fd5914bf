package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchErr   error
	short      bool
	batchSizes []int
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	n := len(texts)
	if m.short {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = m.result.Embedding
	}
	return domain.BatchEmbeddingResult{
		Embeddings:  embeddings,
		TotalTokens: m.result.TotalTokens * len(texts),
	}, nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 4,
	}}
	p := NewInstrumentedEmbedder(inner, "test-model", zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	result, err := p.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3 dims, got %d", len(result.Embedding))
	}
	if usage.EmbeddingTokens() != 4 {
		t.Errorf("expected 4 embedding tokens, got %d", usage.EmbeddingTokens())
	}
}

func TestInstrumentedEmbedder_NoUsageCollector(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 4}}
	p := NewInstrumentedEmbedder(inner, "test-model", nil)

	if _, err := p.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: fmt.Errorf("boom: %w", domain.ErrEmbeddingService)}
	p := NewInstrumentedEmbedder(inner, "test-model", zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService, got %v", err)
	}
}

func TestInstrumentedEmbedder_BatchSplitsIntoSubBatches(t *testing.T) {
	inner := &mockBatchEmbedder{mockEmbedder: mockEmbedder{
		result: domain.EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: 1},
	}}
	p := NewInstrumentedEmbedder(inner, "test-model", zap.NewNop())

	texts := make([]string, DefaultMaxAPIBatchSize+10)
	for i := range texts {
		texts[i] = fmt.Sprintf("t%d", i)
	}

	ctx, usage := domain.NewContextWithUsage(context.Background())
	result, err := p.BatchEmbed(ctx, texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embeddings) != len(texts) {
		t.Fatalf("expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}
	if len(inner.batchSizes) != 2 || inner.batchSizes[0] != DefaultMaxAPIBatchSize || inner.batchSizes[1] != 10 {
		t.Errorf("unexpected sub-batches: %v", inner.batchSizes)
	}
	if usage.EmbeddingTokens() != len(texts) {
		t.Errorf("expected %d tokens, got %d", len(texts), usage.EmbeddingTokens())
	}
}

func TestInstrumentedEmbedder_BatchFallsBackToSingle(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 2}}
	p := NewInstrumentedEmbedder(inner, "test-model", zap.NewNop())

	result, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 single calls, got %d", inner.calls)
	}
	if result.TotalTokens != 6 {
		t.Errorf("expected 6 tokens, got %d", result.TotalTokens)
	}
}

func TestInstrumentedEmbedder_BatchCountMismatch(t *testing.T) {
	inner := &mockBatchEmbedder{
		mockEmbedder: mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}},
		short:        true,
	}
	p := NewInstrumentedEmbedder(inner, "test-model", zap.NewNop())

	_, err := p.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService, got %v", err)
	}
}

func TestInstrumentedEmbedder_BatchError(t *testing.T) {
	inner := &mockBatchEmbedder{batchErr: errors.New("down")}
	p := NewInstrumentedEmbedder(inner, "test-model", zap.NewNop())

	if _, err := p.BatchEmbed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumentedEmbedder_BatchEmpty(t *testing.T) {
	inner := &mockBatchEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test-model", zap.NewNop())

	result, err := p.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embeddings) != 0 || len(inner.batchSizes) != 0 {
		t.Errorf("expected no calls, got %v", inner.batchSizes)
	}
}
