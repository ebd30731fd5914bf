package ragchat

import (
	"context"
	"strings"
	"sync"
)

// --- public provider mocks ---

// keywordEmbedder maps texts mentioning "sky" and "grass" to orthogonal vectors.
type keywordEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return EmbeddingResult{}, m.err
	}
	v := []float32{0.1, 0.1}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "sky") {
		v = []float32{1, 0}
	}
	if strings.Contains(lower, "grass") {
		v = []float32{0, 1}
	}
	return EmbeddingResult{Embedding: v, PromptTokens: 3, TotalTokens: 3}, nil
}

func (m *keywordEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// echoCompleter returns the user message so tests can see the retrieved context.
type echoCompleter struct {
	mu   sync.Mutex
	last CompletionRequest
	err  error
}

func (m *echoCompleter) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	m.mu.Lock()
	m.last = req
	m.mu.Unlock()
	if m.err != nil {
		return Completion{}, m.err
	}
	return Completion{Text: req.Messages[len(req.Messages)-1].Content, TotalTokens: 7}, nil
}
