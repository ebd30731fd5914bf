// Package extract turns document sources (PDF files, web pages) into plain text.
package extract

import "github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"

func fail(source string, err error) error {
	return domain.NewExtractionError(source, err)
}
