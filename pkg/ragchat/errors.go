package ragchat

import "github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrExtraction        = domain.ErrExtraction
	ErrEmbeddingService  = domain.ErrEmbeddingService
	ErrCompletionService = domain.ErrCompletionService
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrInvalidInput      = domain.ErrInvalidInput
)
