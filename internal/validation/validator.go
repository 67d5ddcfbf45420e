package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of a context check on submitted complaint text.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// Validator decides whether a submission is a genuine civic grievance.
// It is pure: no I/O, no clock, fully determined by its configuration.
type Validator struct {
	minLength int
	patterns  []string
}

func NewValidator(minLength int, patterns []string) *Validator {
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return &Validator{minLength: minLength, patterns: lowered}
}

// Validate runs the length check first, then the pattern scan.
// The first matching pattern is named in the reason; later patterns
// are not consulted. Length is measured in runes, not bytes: Devanagari
// and other multi-byte scripts are first-class input.
func (v *Validator) Validate(text string) Result {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < v.minLength {
		return Result{Valid: false, Reason: "complaint text is too short to describe a civic issue"}
	}
	lower := strings.ToLower(trimmed)
	for _, p := range v.patterns {
		if strings.Contains(lower, p) {
			return Result{Valid: false, Reason: fmt.Sprintf("complaint matches non-civic pattern %q", p)}
		}
	}
	return Result{Valid: true, Reason: "valid civic complaint"}
}
