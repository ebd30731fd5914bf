package health

import (
	"context"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/corpus"
)

// ProviderChecker checks model provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusReader exposes the currently loaded corpus.
type CorpusReader interface {
	Snapshot() corpus.Snapshot
}
