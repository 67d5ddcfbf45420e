package fraud

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Input is the slice of a submission the scorer inspects.
type Input struct {
	Text      string `json:"text"`
	CitizenID string `json:"citizen_id"`
	ClientIP  string `json:"client_ip,omitempty"`
}

// Activity carries the citizen's recent submission counts, measured by the
// caller against the complaints store.
type Activity struct {
	ComplaintsLastHour int `json:"complaints_last_hour"`
	ComplaintsLastDay  int `json:"complaints_last_day"`
}

// Assessment is the scorer verdict. RiskFactors lists one explanatory
// string per triggered signal in evaluation order; officers review them
// in that order, so the order is part of the contract.
type Assessment struct {
	Score       int      `json:"score"`
	Level       string   `json:"level"`
	RiskFactors []string `json:"risk_factors"`
}

// Scorer computes an additive fraud score from independent signals.
// Pure: every input it needs arrives as an argument.
type Scorer struct {
	hourlyThreshold int
	dailyThreshold  int
}

func NewScorer(hourlyThreshold, dailyThreshold int) *Scorer {
	return &Scorer{hourlyThreshold: hourlyThreshold, dailyThreshold: dailyThreshold}
}

var (
	digitRunRe    = regexp.MustCompile(`[0-9]{8,}`)
	specialRunRe  = regexp.MustCompile(`[!@#$%^&*()_+=\[\]{}|\\;:'",<>?/~` + "`" + `-]{5,}`)
	spamMarkerRe  = regexp.MustCompile(`(?i)\b(spam|fake|bogus)\b`)
	capsIDRe      = regexp.MustCompile(`^[A-Z0-9]{12,}$`)
	wordSplitRe   = regexp.MustCompile(`\s+`)
)

var spamKeywords = []string{
	"lottery", "prize", "winner", "free money", "click here",
	"congratulations", "cashback", "limited offer",
}

var abuseKeywords = []string{
	"idiot", "stupid", "useless fellow", "nonsense", "bloody", "rascal",
}

// Assess scores one submission. Signals are independent and additive;
// the sum is clamped to [0, 100].
func (s *Scorer) Assess(in Input, activity Activity) Assessment {
	score := 0
	var factors []string
	add := func(points int, factor string) {
		score += points
		factors = append(factors, factor)
	}

	text := in.Text
	lower := strings.ToLower(text)
	words := splitWords(text)
	// Lengths are in runes so multi-byte scripts are not penalized or
	// excused by their encoding.
	textLen := utf8.RuneCountInString(text)

	// Text suspiciousness.
	if hasRepeatedRun(text, 5) {
		add(25, "repeated character run in text")
	}
	if digitRunRe.MatchString(text) {
		add(25, "long digit run in text")
	}
	if specialRunRe.MatchString(text) {
		add(25, "dense special character run in text")
	}
	if spamMarkerRe.MatchString(text) {
		add(25, "explicit spam marker word in text")
	}
	if textLen < 10 {
		add(20, "text too short to be a genuine complaint")
	}
	if textLen > 1000 {
		add(10, "text exceeds normal complaint length")
	}
	if word, ok := dominantWord(words); ok {
		add(30, fmt.Sprintf("word %q repeated excessively", word))
	}

	// Metadata anomalies.
	if strings.TrimSpace(in.Text) == "" || strings.TrimSpace(in.CitizenID) == "" {
		add(30, "missing required submission fields")
	}
	if capsIDRe.MatchString(in.CitizenID) {
		add(20, "citizen id matches suspicious all-caps pattern")
	}
	if ipLooksAnonymized(in.ClientIP) {
		add(15, "client ip carries proxy or vpn markers")
	}

	// Frequency anomalies. The hourly check subsumes the daily one: a burst
	// that trips both is counted once, at the sharper hourly weight.
	if activity.ComplaintsLastHour > s.hourlyThreshold {
		add(40, fmt.Sprintf("%d complaints in the last hour", activity.ComplaintsLastHour))
	} else if activity.ComplaintsLastDay > s.dailyThreshold {
		add(25, fmt.Sprintf("%d complaints in the last day", activity.ComplaintsLastDay))
	}

	// Keyword hits, proportional with per-signal caps.
	if pts, hits := keywordScore(lower, spamKeywords, 50); pts > 0 {
		add(pts, fmt.Sprintf("spam keywords present: %s", strings.Join(hits, ", ")))
	}
	if pts, hits := keywordScore(lower, abuseKeywords, 40); pts > 0 {
		add(pts, fmt.Sprintf("abusive language present: %s", strings.Join(hits, ", ")))
	}

	// Geolocation anomaly: reserved signal, always 0 until location data
	// is captured at intake.

	// Length anomalies.
	if textLen > 5000 {
		add(20, "text anomalously long")
	}
	if textLen < 5 {
		add(15, "text anomalously short")
	}
	if len(words) > 1000 {
		add(15, "anomalously high word count")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return Assessment{Score: score, Level: levelFor(score), RiskFactors: factors}
}

func levelFor(score int) string {
	switch {
	case score >= 80:
		return LevelHigh
	case score >= 50:
		return LevelMedium
	default:
		return LevelLow
	}
}

// hasRepeatedRun reports whether any rune repeats n or more times in a row.
// RE2 has no backreferences, so this is a scan.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

func splitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return wordSplitRe.Split(s, -1)
}

// dominantWord reports a word that both recurs (3+ occurrences) and makes
// up more than 30% of the text. The recurrence floor keeps three-word
// complaints from tripping the ratio alone. Words are checked in
// first-occurrence order so the reported word is stable across runs.
func dominantWord(words []string) (string, bool) {
	if len(words) == 0 {
		return "", false
	}
	counts := map[string]int{}
	for _, w := range words {
		counts[strings.ToLower(w)]++
	}
	seen := map[string]struct{}{}
	for _, w := range words {
		lw := strings.ToLower(w)
		if _, dup := seen[lw]; dup {
			continue
		}
		seen[lw] = struct{}{}
		if c := counts[lw]; c >= 3 && float64(c) > 0.3*float64(len(words)) {
			return lw, true
		}
	}
	return "", false
}

func ipLooksAnonymized(ip string) bool {
	lower := strings.ToLower(ip)
	for _, marker := range []string{"proxy", "vpn", "tor"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// keywordScore awards 10 points per matched phrase, capped.
func keywordScore(lowerText string, keywords []string, limit int) (int, []string) {
	var hits []string
	for _, k := range keywords {
		if strings.Contains(lowerText, k) {
			hits = append(hits, k)
		}
	}
	pts := len(hits) * 10
	if pts > limit {
		pts = limit
	}
	return pts, hits
}
