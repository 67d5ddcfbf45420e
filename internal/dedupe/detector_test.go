package dedupe

import (
	"context"
	"errors"
	"testing"
	"time"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time { return now.Add(-time.Duration(n) * 24 * time.Hour) }

type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return v, nil
}

func TestFindDuplicate_LexicalExactMatch(t *testing.T) {
	d := NewDetector(nil, 0.9, 30*24*time.Hour, nil)
	history := []PriorComplaint{
		{ID: 1, Text: "No water supply in sector 5", CreatedAt: daysAgo(2)},
	}
	m, ok := d.FindDuplicate(context.Background(), "no water supply in sector 5  ", now, history)
	if !ok {
		t.Fatalf("expected lexical duplicate")
	}
	if m.ComplaintID != 1 || m.Method != "lexical" {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestFindDuplicate_LexicalRequiresExactEquality(t *testing.T) {
	d := NewDetector(nil, 0.9, 30*24*time.Hour, nil)
	history := []PriorComplaint{
		{ID: 1, Text: "No water supply in sector 5", CreatedAt: daysAgo(2)},
	}
	if _, ok := d.FindDuplicate(context.Background(), "no water in sector 5", now, history); ok {
		t.Fatalf("paraphrase must not match lexically")
	}
}

func TestFindDuplicate_WindowExcludesOldComplaints(t *testing.T) {
	d := NewDetector(nil, 0.9, 30*24*time.Hour, nil)
	history := []PriorComplaint{
		{ID: 7, Text: "no water supply in sector 5", CreatedAt: daysAgo(31)},
	}
	if _, ok := d.FindDuplicate(context.Background(), "no water supply in sector 5", now, history); ok {
		t.Fatalf("complaint outside the window must not be a duplicate target")
	}
}

func TestFindDuplicate_SkipsInvalidComplaints(t *testing.T) {
	d := NewDetector(nil, 0.9, 30*24*time.Hour, nil)
	history := []PriorComplaint{
		{ID: 8, Text: "no water supply in sector 5", CreatedAt: daysAgo(1), Invalid: true},
	}
	if _, ok := d.FindDuplicate(context.Background(), "no water supply in sector 5", now, history); ok {
		t.Fatalf("invalid complaint must not be a duplicate target")
	}
}

func TestFindDuplicate_MostRecentWins(t *testing.T) {
	d := NewDetector(nil, 0.9, 30*24*time.Hour, nil)
	history := []PriorComplaint{
		{ID: 1, Text: "no water supply in sector 5", CreatedAt: daysAgo(10)},
		{ID: 2, Text: "no water supply in sector 5", CreatedAt: daysAgo(1)},
	}
	m, ok := d.FindDuplicate(context.Background(), "no water supply in sector 5", now, history)
	if !ok || m.ComplaintID != 2 {
		t.Fatalf("expected most recent match, got %+v ok=%v", m, ok)
	}
}

func TestFindDuplicate_EmbeddingAboveThreshold(t *testing.T) {
	emb := stubEmbedder{vectors: map[string][]float64{
		"no water in sector 5":        {1, 0.1},
		"water supply out in sector 5": {1, 0.12},
	}}
	d := NewDetector(emb, 0.9, 30*24*time.Hour, nil)
	history := []PriorComplaint{
		{ID: 1, Text: "water supply out in sector 5", CreatedAt: daysAgo(3)},
	}
	m, ok := d.FindDuplicate(context.Background(), "no water in sector 5", now, history)
	if !ok {
		t.Fatalf("expected embedding duplicate")
	}
	if m.Method != "embedding" || m.Similarity <= 0.9 {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestFindDuplicate_EmbeddingBelowThresholdNoLexicalRescue(t *testing.T) {
	// When embeddings work and disagree, the lexical path must not run.
	emb := stubEmbedder{vectors: map[string][]float64{
		"no water supply in sector 5": {1, 0},
		// Same text stored with an orthogonal vector to prove which path decided.
	}}
	emb.vectors["no water supply in sector 5 "] = []float64{0, 1}
	d := NewDetector(emb, 0.9, 30*24*time.Hour, nil)
	history := []PriorComplaint{
		{ID: 1, Text: "no water supply in sector 5 ", CreatedAt: daysAgo(1)},
	}
	if _, ok := d.FindDuplicate(context.Background(), "no water supply in sector 5", now, history); ok {
		t.Fatalf("embedding verdict must be final when the embedder is usable")
	}
}

func TestFindDuplicate_EmbedderFailureFallsBackToLexical(t *testing.T) {
	emb := stubEmbedder{err: errors.New("inference down")}
	d := NewDetector(emb, 0.9, 30*24*time.Hour, nil)
	history := []PriorComplaint{
		{ID: 1, Text: "no water supply in sector 5", CreatedAt: daysAgo(1)},
	}
	m, ok := d.FindDuplicate(context.Background(), "No water supply in sector 5", now, history)
	if !ok || m.Method != "lexical" {
		t.Fatalf("expected lexical fallback match, got %+v ok=%v", m, ok)
	}
}
