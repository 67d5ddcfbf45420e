package dedupe

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gramsetu-backend/internal/nlp"
)

// PriorComplaint is the slice of complaint state the detector needs.
// The caller scopes history to a single citizen before calling.
type PriorComplaint struct {
	ID        int64
	Text      string
	CreatedAt time.Time
	Invalid   bool
}

// Match identifies the prior complaint a new submission duplicates.
type Match struct {
	ComplaintID int64   `json:"complaint_id"`
	Similarity  float64 `json:"similarity"`
	Method      string  `json:"method"` // "embedding" or "lexical"
}

// Detector finds near-duplicate resubmissions within a rolling window.
// With an embedder it compares sentence embeddings by cosine similarity;
// without one (or when embedding fails) it compares normalized text equality.
type Detector struct {
	embedder  nlp.Embedder
	threshold float64
	window    time.Duration
	log       *slog.Logger
}

func NewDetector(embedder nlp.Embedder, threshold float64, window time.Duration, log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{embedder: embedder, threshold: threshold, window: window, log: log}
}

// FindDuplicate scans the citizen's prior complaints most-recent-first and
// returns the first match. Complaints outside the window and complaints
// already marked invalid are never duplicate targets.
func (d *Detector) FindDuplicate(ctx context.Context, text string, submittedAt time.Time, history []PriorComplaint) (Match, bool) {
	cutoff := submittedAt.Add(-d.window)

	candidates := make([]PriorComplaint, 0, len(history))
	for _, p := range history {
		if p.Invalid || p.CreatedAt.Before(cutoff) {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return Match{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	if d.embedder != nil {
		if m, ok, usable := d.embeddingMatch(ctx, text, candidates); usable {
			return m, ok
		}
		// Embedding path unavailable this run; lexical fallback below.
	}
	return d.lexicalMatch(text, candidates)
}

// embeddingMatch returns usable=false when the new text cannot be embedded,
// signalling the caller to fall back. Per-candidate embed failures only skip
// that candidate.
func (d *Detector) embeddingMatch(ctx context.Context, text string, candidates []PriorComplaint) (Match, bool, bool) {
	vec, err := d.embedder.Embed(ctx, text)
	if err != nil {
		d.log.WarnContext(ctx, "embedding failed, using lexical duplicate check", "error", err)
		return Match{}, false, false
	}
	for _, p := range candidates {
		pv, err := d.embedder.Embed(ctx, p.Text)
		if err != nil {
			d.log.WarnContext(ctx, "embedding failed for prior complaint", "complaint_id", p.ID, "error", err)
			continue
		}
		if sim := nlp.Cosine(vec, pv); sim > d.threshold {
			return Match{ComplaintID: p.ID, Similarity: sim, Method: "embedding"}, true, true
		}
	}
	return Match{}, false, true
}

func (d *Detector) lexicalMatch(text string, candidates []PriorComplaint) (Match, bool) {
	norm := normalize(text)
	for _, p := range candidates {
		if normalize(p.Text) == norm {
			return Match{ComplaintID: p.ID, Similarity: 1.0, Method: "lexical"}, true
		}
	}
	return Match{}, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
