package nlp

import (
	"math"
	"testing"
)

func TestCosine_IdenticalVectors(t *testing.T) {
	v := []float64{0.5, 0.2, 0.8}
	got := Cosine(v, v)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected 1.0, got %v", got)
	}
}

func TestCosine_OrthogonalVectors(t *testing.T) {
	got := Cosine([]float64{1, 0}, []float64{0, 1})
	if got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestCosine_MismatchedOrEmpty(t *testing.T) {
	if got := Cosine([]float64{1, 2}, []float64{1}); got != 0 {
		t.Fatalf("dimension mismatch must yield 0, got %v", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Fatalf("empty vectors must yield 0, got %v", got)
	}
	if got := Cosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Fatalf("zero-magnitude vector must yield 0, got %v", got)
	}
}
