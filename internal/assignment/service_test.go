package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

	"gramsetu-backend/internal/audit"
	"gramsetu-backend/internal/classify"
	"gramsetu-backend/internal/complaints"
	"gramsetu-backend/internal/crs"
	"gramsetu-backend/internal/dedupe"
	"gramsetu-backend/internal/fraud"
	"gramsetu-backend/internal/validation"
)

func newComplaintService(auditSvc *audit.Service) *complaints.Service {
	return complaints.NewService(
		complaints.NewMemoryRepo(),
		validation.NewValidator(10, []string{"weather"}),
		dedupe.NewDetector(nil, 0.9, 30*24*time.Hour, nil),
		classify.NewClassifier(nil, []string{classify.CategoryWater, classify.CategoryOther}, []string{"urgent"}, nil),
		fraud.NewScorer(10, 30),
		crs.NewService(crs.NewMemoryRepo(), crs.Deltas{DefaultScore: 100, PenaltyInvalid: 10, PenaltyDuplicate: 5, RewardValid: 1}),
		auditSvc,
		30*24*time.Hour,
		nil,
	)
}

func newFixture(t *testing.T) (*Service, *complaints.Service, int64) {
	t.Helper()
	auditSvc := audit.NewService(audit.NewMemoryRepo())
	complaintSvc := newComplaintService(auditSvc)
	svc := NewService(NewMemoryRepo(), complaintSvc, auditSvc, nil)
	if err := svc.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	res, err := complaintSvc.Submit(context.Background(), complaints.SubmitRequest{
		Text:      "No water supply in sector 5 for three days",
		CitizenID: "CIT001",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return svc, complaintSvc, res.Complaint.ID
}

func TestSeedDefaults_LoadsRoster(t *testing.T) {
	svc, _, _ := newFixture(t)
	workers, err := svc.Workers(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(workers) != 4 {
		t.Fatalf("expected 4 seeded workers, got %d", len(workers))
	}
	if workers[0].ID != "FW001" || workers[0].Zone != "North" {
		t.Fatalf("unexpected first worker: %+v", workers[0])
	}
}

func TestAssign_MovesComplaintIntoReview(t *testing.T) {
	svc, complaintSvc, complaintID := newFixture(t)
	ctx := context.Background()

	a, err := svc.Assign(ctx, complaintID, "FW001", "OFF001", "officer")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.WorkerID != "FW001" || a.Status != AssignmentStatusAssigned || a.ID == "" {
		t.Fatalf("unexpected assignment: %+v", a)
	}

	c, err := complaintSvc.GetByID(ctx, complaintID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.Status != complaints.StatusInProgress {
		t.Fatalf("expected In Progress after assignment, got %q", c.Status)
	}
}

func TestAssign_UnknownWorker(t *testing.T) {
	svc, _, complaintID := newFixture(t)
	if _, err := svc.Assign(context.Background(), complaintID, "FW999", "OFF001", "officer"); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
}

func TestAssign_UnknownComplaint(t *testing.T) {
	svc, _, _ := newFixture(t)
	if _, err := svc.Assign(context.Background(), 999, "FW001", "OFF001", "officer"); !errors.Is(err, complaints.ErrNotFound) {
		t.Fatalf("expected complaints.ErrNotFound, got %v", err)
	}
}

func TestAssign_RejectsDoubleAssignment(t *testing.T) {
	svc, _, complaintID := newFixture(t)
	ctx := context.Background()
	if _, err := svc.Assign(ctx, complaintID, "FW001", "OFF001", "officer"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.Assign(ctx, complaintID, "FW002", "OFF001", "officer"); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
}

func TestComplete_ClosesOpenAssignment(t *testing.T) {
	svc, _, complaintID := newFixture(t)
	ctx := context.Background()
	if _, err := svc.Assign(ctx, complaintID, "FW001", "OFF001", "officer"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	done, err := svc.Complete(ctx, complaintID, "leak fixed at the junction")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if done.Status != AssignmentStatusCompleted || done.CompletedAt == nil {
		t.Fatalf("unexpected completion: %+v", done)
	}
	// Completing again finds no open assignment.
	if _, err := svc.Complete(ctx, complaintID, "again"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWorkerAssignments(t *testing.T) {
	svc, _, complaintID := newFixture(t)
	ctx := context.Background()
	if _, err := svc.Assign(ctx, complaintID, "FW003", "OFF001", "officer"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	list, err := svc.WorkerAssignments(ctx, "FW003")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(list) != 1 || list[0].ComplaintID != complaintID {
		t.Fatalf("unexpected list: %+v", list)
	}
	if _, err := svc.WorkerAssignments(ctx, "FW999"); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
}
