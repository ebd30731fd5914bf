package session

import (
	"context"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/corpus"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

// Extractor turns a source (file path or URL) into plain text.
// Failures are *domain.ExtractionError values.
type Extractor interface {
	Extract(ctx context.Context, source string) (string, error)
}

// Index stores the embedded chunks of the current corpus.
type Index interface {
	Load(ctx context.Context, source string, texts []string, embedder domain.Embedder) (corpus.Snapshot, error)
	Retrieve(query []float32) (corpus.Match, error)
	Snapshot() corpus.Snapshot
}

// Generator answers a query from retrieved context.
type Generator interface {
	Generate(ctx context.Context, query, retrieved string) (string, error)
}
