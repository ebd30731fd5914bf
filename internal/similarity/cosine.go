// Package similarity scores closeness between embedding vectors.
package similarity

import (
	"math"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

// Epsilon replaces a zero denominator so zero-norm vectors score ~0 instead of NaN.
const Epsilon = 1e-9

// Cosine returns dot(a,b) / (|a|*|b|). Sums are accumulated in float64.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewDimensionMismatch(len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		denom = Epsilon
	}
	return dot / denom, nil
}
