package classify

import (
	"context"
	"log/slog"
	"strings"

	"gramsetu-backend/internal/nlp"
)

// Canonical complaint categories. The zero-shot path scores against these
// exact labels; the keyword path maps matches onto them.
const (
	CategoryWater       = "Water supply issues"
	CategoryHealth      = "Health and medical services"
	CategoryElectricity = "Electricity and power problems"
	CategoryRoad        = "Road and infrastructure"
	CategoryOther       = "Other government services"
)

const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
)

// Result is a category assignment with the path that produced it.
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"` // "zero-shot" or "keyword"
}

// Classifier assigns a category and urgency to complaint text.
// When the zero-shot adapter is nil or fails, the keyword fallback runs;
// classification never fails a submission.
type Classifier struct {
	zeroShot       nlp.TextClassifier
	categories     []string
	urgentKeywords []string
	log            *slog.Logger
}

func NewClassifier(zeroShot nlp.TextClassifier, categories, urgentKeywords []string, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{
		zeroShot:       zeroShot,
		categories:     categories,
		urgentKeywords: urgentKeywords,
		log:            log,
	}
}

// Keyword groups checked in a fixed order; the first group with a match
// decides the category. Includes common Hindi terms from rural submissions.
var keywordGroups = []struct {
	category string
	words    []string
}{
	{CategoryWater, []string{"water", "पानी", "नल", "tap", "pipeline", "leak", "drinking", "supply"}},
	{CategoryElectricity, []string{"electricity", "power", "बिजली", "light", "transformer", "voltage", "outage", "current"}},
	{CategoryRoad, []string{"road", "सड़क", "pothole", "street", "bridge", "footpath", "drain"}},
	{CategoryHealth, []string{"hospital", "अस्पताल", "doctor", "medicine", "clinic", "health", "ambulance"}},
}

// Classify tries the zero-shot model first and falls back to keywords.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	if c.zeroShot != nil {
		pred, err := c.zeroShot.Classify(ctx, text, c.categories)
		if err == nil {
			return Result{Category: pred.Label, Confidence: pred.Confidence, Source: "zero-shot"}
		}
		c.log.WarnContext(ctx, "zero-shot classification failed, using keyword fallback", "error", err)
	}
	return c.keywordClassify(text)
}

func (c *Classifier) keywordClassify(text string) Result {
	lower := strings.ToLower(text)
	for _, g := range keywordGroups {
		for _, w := range g.words {
			if strings.Contains(lower, w) {
				return Result{Category: g.category, Confidence: 0.5, Source: "keyword"}
			}
		}
	}
	return Result{Category: CategoryOther, Confidence: 0.3, Source: "keyword"}
}

// DetectUrgency flags complaints carrying urgency signal words.
func (c *Classifier) DetectUrgency(text string) string {
	lower := strings.ToLower(text)
	for _, w := range c.urgentKeywords {
		if strings.Contains(lower, strings.ToLower(w)) {
			return UrgencyHigh
		}
	}
	return UrgencyMedium
}
