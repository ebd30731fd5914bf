// Package chunker splits document text into bounded word windows.
package chunker

import (
	"strings"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

// Split groups the whitespace-delimited words of text into consecutive,
// non-overlapping windows of maxWords words. The last window may be shorter.
// maxWords <= 0 falls back to domain.DefaultMaxWords.
func Split(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = domain.DefaultMaxWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
