package complaints

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gramsetu-backend/internal/audit"
	"gramsetu-backend/internal/classify"
	"gramsetu-backend/internal/crs"
	"gramsetu-backend/internal/dedupe"
	"gramsetu-backend/internal/fraud"
	"gramsetu-backend/internal/validation"
)

var testCategories = []string{
	classify.CategoryWater, classify.CategoryHealth, classify.CategoryElectricity,
	classify.CategoryRoad, classify.CategoryOther,
}

type fixture struct {
	svc       *Service
	repo      *MemoryRepo
	auditRepo *audit.MemoryRepo
	ratings   *crs.Service
	now       *time.Time
}

func newFixture() *fixture {
	repo := NewMemoryRepo()
	auditRepo := audit.NewMemoryRepo()
	ratings := crs.NewService(crs.NewMemoryRepo(), crs.Deltas{
		DefaultScore: 100, PenaltyInvalid: 10, PenaltyDuplicate: 5, RewardValid: 1,
	})
	svc := NewService(
		repo,
		validation.NewValidator(10, []string{"rain not coming", "weather", "cricket", "movie"}),
		dedupe.NewDetector(nil, 0.9, 30*24*time.Hour, nil),
		classify.NewClassifier(nil, testCategories, []string{"urgent", "emergency", "critical", "immediate", "asap"}, nil),
		fraud.NewScorer(10, 30),
		ratings,
		audit.NewService(auditRepo),
		30*24*time.Hour,
		nil,
	)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{svc: svc, repo: repo, auditRepo: auditRepo, ratings: ratings, now: &now}
	svc.clock = func() time.Time { return *f.now }
	return f
}

func (f *fixture) advance(d time.Duration) { *f.now = f.now.Add(d) }

func (f *fixture) crsScore(t *testing.T, citizenID string) int {
	t.Helper()
	c, err := f.ratings.Get(context.Background(), citizenID)
	if err != nil {
		t.Fatalf("rating lookup failed: %v", err)
	}
	return c.CRSScore
}

func TestSubmit_ValidUrgentWaterComplaint(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Submit(context.Background(), SubmitRequest{
		Text:      "Water supply has been cut off for 3 days in our area, this is urgent",
		CitizenID: "CIT001",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c := res.Complaint
	if c.Category != classify.CategoryWater {
		t.Fatalf("expected water category, got %q", c.Category)
	}
	if c.Urgency != classify.UrgencyHigh {
		t.Fatalf("expected High urgency, got %q", c.Urgency)
	}
	if !c.IsValid || c.IsDuplicate || c.Status != StatusPending {
		t.Fatalf("unexpected flags: %+v", c)
	}
	if c.ID == 0 || c.Fingerprint == "" {
		t.Fatalf("expected assigned id and fingerprint")
	}
	// Reward on a fresh citizen is capped at the ceiling.
	if res.CRSScore != 100 {
		t.Fatalf("expected CRS capped at 100, got %d", res.CRSScore)
	}
	if c.Channel != ChannelWeb {
		t.Fatalf("expected default web channel, got %q", c.Channel)
	}
}

func TestSubmit_InvalidContextStillPersisted(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Submit(context.Background(), SubmitRequest{
		Text:      "Rain not coming this season",
		CitizenID: "CIT001",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c := res.Complaint
	if c.IsValid || c.Status != StatusInvalid {
		t.Fatalf("expected Invalid status, got %+v", c)
	}
	if c.ValidationMessage == "" {
		t.Fatalf("expected validation message naming the pattern")
	}
	// Later stages still ran: classification and fraud results present.
	if c.Category == "" || c.FraudLevel == "" {
		t.Fatalf("pipeline stages skipped for invalid complaint: %+v", c)
	}
	if res.CRSScore != 90 {
		t.Fatalf("expected 100-10=90, got %d", res.CRSScore)
	}
	if _, err := f.repo.GetByID(context.Background(), c.ID); err != nil {
		t.Fatalf("invalid complaint must still be stored: %v", err)
	}
}

func TestSubmit_DuplicateWithinWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	text := "Water supply has been cut off for 3 days in our area, this is urgent"

	first, err := f.svc.Submit(ctx, SubmitRequest{Text: text, CitizenID: "CIT001"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	f.advance(48 * time.Hour)
	second, err := f.svc.Submit(ctx, SubmitRequest{Text: text, CitizenID: "CIT001"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c := second.Complaint
	if !c.IsDuplicate || c.Status != StatusDuplicate {
		t.Fatalf("expected Duplicate status, got %+v", c)
	}
	if c.DuplicateOf == nil || *c.DuplicateOf != first.Complaint.ID {
		t.Fatalf("expected duplicate_of=%d, got %v", first.Complaint.ID, c.DuplicateOf)
	}
	// Context still valid, so the lesser penalty applies: 100 -> 95.
	if second.CRSScore != 95 {
		t.Fatalf("expected 95, got %d", second.CRSScore)
	}
}

func TestSubmit_SameTextDifferentCitizenNotDuplicate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	text := "Water supply has been cut off for 3 days in our area, this is urgent"

	if _, err := f.svc.Submit(ctx, SubmitRequest{Text: text, CitizenID: "CIT001"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	f.advance(time.Hour)
	res, err := f.svc.Submit(ctx, SubmitRequest{Text: text, CitizenID: "CIT002"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Complaint.IsDuplicate {
		t.Fatalf("duplicate detection must be scoped per citizen")
	}
}

func TestSubmit_OutsideWindowNotDuplicate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	text := "Water supply has been cut off for 3 days in our area, this is urgent"

	if _, err := f.svc.Submit(ctx, SubmitRequest{Text: text, CitizenID: "CIT001"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	f.advance(31 * 24 * time.Hour)
	res, err := f.svc.Submit(ctx, SubmitRequest{Text: text, CitizenID: "CIT001"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Complaint.IsDuplicate {
		t.Fatalf("resubmission after the window must not be a duplicate")
	}
}

func TestSubmit_FingerprintCollisionIsIntegrityError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	text := "Water supply has been cut off for 3 days in our area, this is urgent"

	if _, err := f.svc.Submit(ctx, SubmitRequest{Text: text, CitizenID: "CIT001"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// Same text at the exact same instant hashes identically.
	if _, err := f.svc.Submit(ctx, SubmitRequest{Text: text, CitizenID: "CIT001"}); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}

func TestSubmit_RequiresCitizenID(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Submit(context.Background(), SubmitRequest{Text: "streetlight broken near the temple"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmit_AppendsAuditEvent(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Submit(context.Background(), SubmitRequest{
		Text:      "No electricity in ward 7 since yesterday evening",
		CitizenID: "CIT001",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	events, err := f.auditRepo.ListAsc(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != audit.EventTypeComplaint || e.Action != "created" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if want := fmt.Sprintf("%d", res.Complaint.ID); e.EntityID != want {
		t.Fatalf("audit event must reference the stored complaint id, got %q want %q", e.EntityID, want)
	}
}

func TestResolve_RejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Resolve(context.Background(), 1, ResolveRequest{Status: Status("Weird")}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestResolve_NotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Resolve(context.Background(), 99, ResolveRequest{Status: StatusResolved}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_TerminalTransitionAppliesReward(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	// Drop the citizen below the ceiling so the reward is observable.
	if _, err := f.svc.Submit(ctx, SubmitRequest{Text: "Rain not coming this season", CitizenID: "CIT001"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	f.advance(time.Minute)
	sub, err := f.svc.Submit(ctx, SubmitRequest{
		Text: "Hand pump near the school is broken and leaking water", CitizenID: "CIT001",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// 100 -10 (invalid) +1 (valid unique) = 91.
	if got := f.crsScore(t, "CIT001"); got != 91 {
		t.Fatalf("expected 91 before resolution, got %d", got)
	}

	resolved, err := f.svc.Resolve(ctx, sub.Complaint.ID, ResolveRequest{
		Status: StatusResolved, Evidence: "pump repaired, photo attached",
		ActorID: "FW001", ActorRole: "field_worker",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resolved.Status != StatusResolved || resolved.Evidence == "" {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}
	if got := f.crsScore(t, "CIT001"); got != 92 {
		t.Fatalf("expected 92 after resolution reward, got %d", got)
	}
}

func TestResolve_TerminalWriteIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sub, err := f.svc.Submit(ctx, SubmitRequest{
		Text: "Hand pump near the school is broken and leaking water", CitizenID: "CIT001",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.svc.Resolve(ctx, sub.Complaint.ID, ResolveRequest{Status: StatusResolved}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	scoreAfterFirst := f.crsScore(t, "CIT001")
	eventsAfterFirst, _ := f.auditRepo.ListAsc(ctx)

	again, err := f.svc.Resolve(ctx, sub.Complaint.ID, ResolveRequest{Status: StatusResolved})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if again.Status != StatusResolved {
		t.Fatalf("expected current state back, got %+v", again)
	}
	if got := f.crsScore(t, "CIT001"); got != scoreAfterFirst {
		t.Fatalf("repeated terminal write must not re-apply CRS: %d vs %d", got, scoreAfterFirst)
	}
	eventsAfterSecond, _ := f.auditRepo.ListAsc(ctx)
	if len(eventsAfterSecond) != len(eventsAfterFirst) {
		t.Fatalf("repeated terminal write must not append audit events")
	}
}

func TestResolve_InProgressDoesNotTouchCRS(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sub, err := f.svc.Submit(ctx, SubmitRequest{
		Text: "Hand pump near the school is broken and leaking water", CitizenID: "CIT001",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	before := f.crsScore(t, "CIT001")
	updated, err := f.svc.Resolve(ctx, sub.Complaint.ID, ResolveRequest{Status: StatusInProgress})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Fatalf("expected In Progress, got %q", updated.Status)
	}
	if got := f.crsScore(t, "CIT001"); got != before {
		t.Fatalf("non-terminal transition must not change CRS")
	}
}

func TestResolve_RejectionAppliesPenalty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sub, err := f.svc.Submit(ctx, SubmitRequest{
		Text: "Hand pump near the school is broken and leaking water", CitizenID: "CIT001",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.svc.Resolve(ctx, sub.Complaint.ID, ResolveRequest{Status: StatusRejected}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// 100 +1 (capped to 100) -5 (rejection) = 95.
	if got := f.crsScore(t, "CIT001"); got != 95 {
		t.Fatalf("expected 95 after rejection, got %d", got)
	}
}
