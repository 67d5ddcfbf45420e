package classify

import (
	"context"
	"errors"
	"testing"

	"gramsetu-backend/internal/nlp"
)

var testCategories = []string{
	CategoryWater, CategoryHealth, CategoryElectricity, CategoryRoad, CategoryOther,
}

var testUrgent = []string{"urgent", "emergency", "critical", "immediate", "asap"}

type stubZeroShot struct {
	pred nlp.Prediction
	err  error
}

func (s stubZeroShot) Classify(ctx context.Context, text string, labels []string) (nlp.Prediction, error) {
	return s.pred, s.err
}

func TestClassify_ZeroShotPreferred(t *testing.T) {
	zs := stubZeroShot{pred: nlp.Prediction{Label: CategoryHealth, Confidence: 0.93}}
	c := NewClassifier(zs, testCategories, testUrgent, nil)

	got := c.Classify(context.Background(), "no water in the village tank")
	if got.Category != CategoryHealth {
		t.Fatalf("expected model label to win, got %q", got.Category)
	}
	if got.Source != "zero-shot" {
		t.Fatalf("expected zero-shot source, got %q", got.Source)
	}
}

func TestClassify_FallsBackOnModelError(t *testing.T) {
	zs := stubZeroShot{err: errors.New("inference unavailable")}
	c := NewClassifier(zs, testCategories, testUrgent, nil)

	got := c.Classify(context.Background(), "water pipeline burst near the school")
	if got.Category != CategoryWater {
		t.Fatalf("expected keyword fallback to water, got %q", got.Category)
	}
	if got.Source != "keyword" {
		t.Fatalf("expected keyword source, got %q", got.Source)
	}
}

func TestClassify_KeywordOrder(t *testing.T) {
	// Water group is checked before electricity; a text with both resolves water.
	c := NewClassifier(nil, testCategories, testUrgent, nil)
	got := c.Classify(context.Background(), "water motor has no electricity connection")
	if got.Category != CategoryWater {
		t.Fatalf("expected water to win by group order, got %q", got.Category)
	}
}

func TestClassify_HindiKeywords(t *testing.T) {
	c := NewClassifier(nil, testCategories, testUrgent, nil)
	cases := map[string]string{
		"गांव में पानी नहीं आ रहा है":  CategoryWater,
		"बिजली तीन दिन से नहीं है":     CategoryElectricity,
		"सड़क पर बड़े गड्ढे हो गए हैं": CategoryRoad,
		"अस्पताल में दवाई नहीं मिलती":  CategoryHealth,
	}
	for text, want := range cases {
		if got := c.Classify(context.Background(), text); got.Category != want {
			t.Fatalf("text %q: expected %q, got %q", text, want, got.Category)
		}
	}
}

func TestClassify_DefaultsToOther(t *testing.T) {
	c := NewClassifier(nil, testCategories, testUrgent, nil)
	got := c.Classify(context.Background(), "ration card application pending for months")
	if got.Category != CategoryOther {
		t.Fatalf("expected Other, got %q", got.Category)
	}
}

func TestDetectUrgency(t *testing.T) {
	c := NewClassifier(nil, testCategories, testUrgent, nil)
	if got := c.DetectUrgency("URGENT: transformer sparking near homes"); got != UrgencyHigh {
		t.Fatalf("expected High, got %q", got)
	}
	if got := c.DetectUrgency("street light not working since last week"); got != UrgencyMedium {
		t.Fatalf("expected Medium, got %q", got)
	}
}
