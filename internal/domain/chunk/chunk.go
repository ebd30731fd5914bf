package chunk

import (
	"errors"
	"strings"
)

// Indexed pairs a chunk of document text with its embedding (immutable value object).
type Indexed struct {
	text   string
	vector []float32
}

// New validates and creates an Indexed chunk. The vector is copied.
func New(text string, vector []float32) (Indexed, error) {
	if strings.TrimSpace(text) == "" {
		return Indexed{}, errors.New("chunk text is empty")
	}
	if len(vector) == 0 {
		return Indexed{}, errors.New("chunk vector is empty")
	}
	v := make([]float32, len(vector))
	copy(v, vector)
	return Indexed{text: text, vector: v}, nil
}

// Text returns the chunk text.
func (c *Indexed) Text() string { return c.text }

// Vector returns the embedding vector. Callers must not modify it.
func (c *Indexed) Vector() []float32 { return c.vector }

// Dimension returns the vector length.
func (c *Indexed) Dimension() int { return len(c.vector) }
