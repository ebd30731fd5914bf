// Package present renders session results as the strings shown to a user.
package present

import (
	"errors"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

// Status lines shown after a load.
const (
	PDFLoaded = "✅ PDF loaded. You can now ask questions."
	URLLoaded = "✅ Website content loaded. You can now ask questions."
)

// LoadFailed renders a failed load.
func LoadFailed(err error) string {
	return "❌ " + err.Error()
}

// Answer renders the outcome of an ask. A nil err returns answer unchanged.
func Answer(answer string, err error) string {
	switch {
	case err == nil:
		return answer
	case errors.Is(err, domain.ErrCompletionService):
		return "OpenAI error: " + err.Error()
	case errors.Is(err, domain.ErrEmbeddingService):
		return "Embedding error: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
