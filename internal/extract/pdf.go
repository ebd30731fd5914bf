package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the plain text of a PDF file on disk.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF { return &PDF{} }

// Extract reads path and returns the text of every page joined with "\n".
// Failures are *domain.ExtractionError values.
func (p *PDF) Extract(ctx context.Context, path string) (string, error) {
	text, err := readPDF(ctx, path)
	if err != nil {
		return "", fail(path, err)
	}
	return text, nil
}

func readPDF(ctx context.Context, path string) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}
