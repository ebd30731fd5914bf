package ragchat

import (
	"context"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/present"
)

// Display exposes the client through methods that always return a displayable string.
type Display struct {
	c *Client
}

// Display returns the string-only view of the client.
func (c *Client) Display() *Display {
	return &Display{c: c}
}

// LoadFromPDF loads a PDF and returns a status line ("✅ ..." or "❌ <error>").
func (d *Display) LoadFromPDF(ctx context.Context, path string) string {
	if _, err := d.c.LoadPDF(ctx, path); err != nil {
		return present.LoadFailed(err)
	}
	return present.PDFLoaded
}

// LoadFromURL loads a web page and returns a status line ("✅ ..." or "❌ <error>").
func (d *Display) LoadFromURL(ctx context.Context, url string) string {
	if _, err := d.c.LoadURL(ctx, url); err != nil {
		return present.LoadFailed(err)
	}
	return present.URLLoaded
}

// Ask returns the answer, or a diagnostic such as "OpenAI error: ..." when it fails.
func (d *Display) Ask(ctx context.Context, query string) string {
	return present.Answer(d.c.Ask(ctx, query))
}
