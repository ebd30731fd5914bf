package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction signals that a document source could not be turned into text.
	ErrExtraction = errors.New("extraction failed")
	// ErrEmbeddingService signals an embedding provider failure (unreachable, rate limited, timeout, malformed).
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrCompletionService signals a completion provider failure.
	ErrCompletionService = errors.New("completion service error")
	// ErrDimensionMismatch signals vectors of different dimensions.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidInput signals a caller-supplied value that cannot be processed.
	ErrInvalidInput = errors.New("invalid input")
)

// ExtractionError wraps ErrExtraction with the source that failed.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrExtraction.Error(), e.Source)
	}
	return fmt.Sprintf("%s: %s: %v", ErrExtraction.Error(), e.Source, e.Err)
}

// Unwrap returns both the sentinel and the cause so errors.Is matches either.
func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtraction}
	}
	return []error{ErrExtraction, e.Err}
}

// NewExtractionError creates an extraction error for source.
func NewExtractionError(source string, err error) error {
	return &ExtractionError{Source: source, Err: err}
}

// DimensionMismatchError wraps ErrDimensionMismatch with both dimensions.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(want, got int) error {
	return &DimensionMismatchError{Want: want, Got: got}
}
