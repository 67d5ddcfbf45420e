package nlp

import (
	"context"
	"math"
)

// TextClassifier scores a text against a fixed candidate label set.
//
// Rules:
// - No inference SDK or HTTP calls outside nlp adapters.
// - Callers must treat errors as a signal to use their deterministic fallback;
//   classification failure never fails a request.
type TextClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (Prediction, error)
}

// Embedder produces a dense vector representation of a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Prediction is the top label with its confidence in [0, 1].
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Cosine returns the cosine similarity of two vectors, or 0 when either
// vector is empty, zero-length in magnitude, or the dimensions differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
