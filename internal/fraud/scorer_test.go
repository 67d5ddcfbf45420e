package fraud

import (
	"strings"
	"testing"
)

func newTestScorer() *Scorer { return NewScorer(10, 30) }

func TestAssess_CleanComplaintIsLow(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{
		Text:      "No water supply in sector 5 for the last three days",
		CitizenID: "citizen-42",
		ClientIP:  "10.0.0.8",
	}, Activity{})
	if got.Score != 0 || got.Level != LevelLow {
		t.Fatalf("expected clean score 0/low, got %d/%s with factors %v", got.Score, got.Level, got.RiskFactors)
	}
	if len(got.RiskFactors) != 0 {
		t.Fatalf("expected no risk factors, got %v", got.RiskFactors)
	}
}

func TestAssess_RepeatedCharacterRun(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{Text: "heeeeeelp water problem in my village", CitizenID: "c1"}, Activity{})
	if got.Score != 25 {
		t.Fatalf("expected 25, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_DigitAndSpecialRuns(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{Text: "call me at 9876543210 about this !!!!!!! water issue", CitizenID: "c1"}, Activity{})
	// Digit run + special run + repeated-character run (the '!' run is both).
	if got.Score != 75 {
		t.Fatalf("expected 75, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_ShortTextStacksSignals(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{Text: "hi", CitizenID: "c1"}, Activity{})
	// <10 chars (+20) and anomalously short <5 chars (+15).
	if got.Score != 35 {
		t.Fatalf("expected 35, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_LengthSignalsCountRunes(t *testing.T) {
	s := newTestScorer()
	// 9 runes but 25 bytes: trips the <10 signal, not the <5 one.
	got := s.Assess(Input{Text: "पानी नहीं", CitizenID: "c1"}, Activity{})
	if got.Score != 20 {
		t.Fatalf("expected 20 for 9-rune text, got %d (%v)", got.Score, got.RiskFactors)
	}

	// 500 Devanagari runs past 1000 bytes but stays under 1000 runes.
	long := strings.Repeat("पानी नहीं ", 50)
	got = s.Assess(Input{Text: long, CitizenID: "c1"}, Activity{})
	for _, f := range got.RiskFactors {
		if strings.Contains(f, "exceeds normal complaint length") {
			t.Fatalf("length signal tripped on byte count: %v", got.RiskFactors)
		}
	}
}

func TestAssess_DominantWord(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{
		Text:      "water water water water problem here",
		CitizenID: "c1",
	}, Activity{})
	if got.Score != 30 {
		t.Fatalf("expected 30, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_MissingFields(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{Text: "streetlight broken on main road near temple"}, Activity{})
	if got.Score != 30 {
		t.Fatalf("expected 30 for missing citizen id, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_SuspiciousCitizenID(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{Text: "streetlight broken on main road near temple", CitizenID: "ABCD1234EFGH99"}, Activity{})
	if got.Score != 20 {
		t.Fatalf("expected 20, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_ProxyIP(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{Text: "streetlight broken on main road near temple", CitizenID: "c1", ClientIP: "vpn-exit-103.44.1.2"}, Activity{})
	if got.Score != 15 {
		t.Fatalf("expected 15, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_HourlyFrequencyTakesPrecedence(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{Text: "streetlight broken on main road near temple", CitizenID: "c1"},
		Activity{ComplaintsLastHour: 11, ComplaintsLastDay: 40})
	// Hourly burst counted once at +40; daily not stacked on top.
	if got.Score != 40 {
		t.Fatalf("expected 40, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_DailyFrequencyWhenHourlyQuiet(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{Text: "streetlight broken on main road near temple", CitizenID: "c1"},
		Activity{ComplaintsLastHour: 2, ComplaintsLastDay: 31})
	if got.Score != 25 {
		t.Fatalf("expected 25, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_SpamKeywordsCapped(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{
		Text:      "congratulations winner you got a lottery prize cashback click here free money now",
		CitizenID: "c1",
	}, Activity{})
	// 7 spam phrases would be 70 uncapped; the spam signal caps at 50.
	hasSpamFactor := false
	for _, f := range got.RiskFactors {
		if strings.HasPrefix(f, "spam keywords present") {
			hasSpamFactor = true
		}
	}
	if !hasSpamFactor {
		t.Fatalf("expected spam factor, got %v", got.RiskFactors)
	}
	if got.Score != 50 {
		t.Fatalf("expected capped 50, got %d (%v)", got.Score, got.RiskFactors)
	}
}

func TestAssess_ScoreClampedAt100(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{
		Text:     "WINNER!!!!! lottery prize cashback 9999999999 spam spam spam spam",
		ClientIP: "tor-exit",
	}, Activity{ComplaintsLastHour: 50})
	if got.Score != 100 || got.Level != LevelHigh {
		t.Fatalf("expected 100/high, got %d/%s", got.Score, got.Level)
	}
}

func TestAssess_FactorsFollowEvaluationOrder(t *testing.T) {
	s := newTestScorer()
	got := s.Assess(Input{
		Text:     "aaaaaa 99999999 fake lottery",
		ClientIP: "proxy-1",
	}, Activity{ComplaintsLastHour: 11})
	wantPrefixes := []string{
		"repeated character run",
		"long digit run",
		"explicit spam marker",
		"missing required",
		"client ip carries proxy",
		"11 complaints in the last hour",
		"spam keywords present",
	}
	if len(got.RiskFactors) != len(wantPrefixes) {
		t.Fatalf("expected %d factors, got %v", len(wantPrefixes), got.RiskFactors)
	}
	for i, p := range wantPrefixes {
		if !strings.HasPrefix(got.RiskFactors[i], p) {
			t.Fatalf("factor %d: expected prefix %q, got %q", i, p, got.RiskFactors[i])
		}
	}
}

func TestDominantWord_StableWhenTied(t *testing.T) {
	// Both words clear the floor and the ratio; the first occurrence wins
	// every run.
	words := splitWords("blocked blocked blocked drain drain drain")
	for i := 0; i < 20; i++ {
		w, ok := dominantWord(words)
		if !ok || w != "blocked" {
			t.Fatalf("expected stable %q, got %q (ok=%v)", "blocked", w, ok)
		}
	}
}

func TestLevelThresholds(t *testing.T) {
	if levelFor(79) != LevelMedium || levelFor(80) != LevelHigh {
		t.Fatalf("high boundary wrong")
	}
	if levelFor(49) != LevelLow || levelFor(50) != LevelMedium {
		t.Fatalf("medium boundary wrong")
	}
}
