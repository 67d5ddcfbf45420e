package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gramsetu-backend/internal/audit"
	"gramsetu-backend/internal/complaints"
)

var (
	ErrWorkerNotFound  = errors.New("assignment: field worker not found")
	ErrWorkerInactive  = errors.New("assignment: field worker is inactive")
	ErrAlreadyAssigned = errors.New("assignment: complaint already has an open assignment")
	ErrNotFound        = errors.New("assignment: not found")
)

// Repository is the persistence contract for workers and assignments.
type Repository interface {
	ListWorkers(ctx context.Context) ([]FieldWorker, error)
	GetWorker(ctx context.Context, id string) (FieldWorker, error)
	// SeedWorkers inserts workers that are not present yet; existing rows
	// are left untouched.
	SeedWorkers(ctx context.Context, workers []FieldWorker) error

	CreateAssignment(ctx context.Context, a Assignment) error
	GetOpenByComplaint(ctx context.Context, complaintID int64) (Assignment, bool, error)
	ListByWorker(ctx context.Context, workerID string) ([]Assignment, error)
	CompleteAssignment(ctx context.Context, id, notes string, now time.Time) (Assignment, error)
}

// ComplaintUpdater is the slice of the complaint service the assignment
// flow needs: moving a complaint into review when a worker picks it up.
type ComplaintUpdater interface {
	Resolve(ctx context.Context, id int64, req complaints.ResolveRequest) (complaints.Complaint, error)
	GetByID(ctx context.Context, id int64) (complaints.Complaint, error)
}

type Service struct {
	repo       Repository
	complaints ComplaintUpdater
	auditor    *audit.Service
	clock      func() time.Time
	log        *slog.Logger
}

func NewService(repo Repository, complaintSvc ComplaintUpdater, auditor *audit.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:       repo,
		complaints: complaintSvc,
		auditor:    auditor,
		clock:      time.Now,
		log:        log,
	}
}

// SeedDefaults loads the pilot worker roster. Safe to call on every boot.
func (s *Service) SeedDefaults(ctx context.Context) error {
	return s.repo.SeedWorkers(ctx, DefaultWorkers())
}

func (s *Service) Workers(ctx context.Context) ([]FieldWorker, error) {
	return s.repo.ListWorkers(ctx)
}

func (s *Service) WorkerAssignments(ctx context.Context, workerID string) ([]Assignment, error) {
	if _, err := s.repo.GetWorker(ctx, workerID); err != nil {
		return nil, err
	}
	return s.repo.ListByWorker(ctx, workerID)
}

// Assign hands a complaint to a worker and moves it into review.
func (s *Service) Assign(ctx context.Context, complaintID int64, workerID, actorID, actorRole string) (Assignment, error) {
	worker, err := s.repo.GetWorker(ctx, workerID)
	if err != nil {
		return Assignment{}, err
	}
	if !worker.Active {
		return Assignment{}, ErrWorkerInactive
	}
	if _, err := s.complaints.GetByID(ctx, complaintID); err != nil {
		return Assignment{}, err
	}
	if _, open, err := s.repo.GetOpenByComplaint(ctx, complaintID); err != nil {
		return Assignment{}, err
	} else if open {
		return Assignment{}, ErrAlreadyAssigned
	}

	a := Assignment{
		ID:          uuid.NewString(),
		ComplaintID: complaintID,
		WorkerID:    workerID,
		Status:      AssignmentStatusAssigned,
		AssignedAt:  s.clock().UTC(),
	}
	if err := s.repo.CreateAssignment(ctx, a); err != nil {
		return Assignment{}, err
	}

	// Assignment implies the complaint is being worked on.
	if _, err := s.complaints.Resolve(ctx, complaintID, complaints.ResolveRequest{
		Status:    complaints.StatusInProgress,
		ActorID:   actorID,
		ActorRole: actorRole,
	}); err != nil {
		s.log.ErrorContext(ctx, "status update failed after assignment",
			"complaint_id", complaintID, "worker_id", workerID, "error", err)
	}

	if _, err := s.auditor.LogEvent(ctx, audit.Entry{
		EventType:  audit.EventTypeAssignment,
		EntityType: "complaint",
		EntityID:   fmt.Sprintf("%d", complaintID),
		Action:     "assigned",
		ActorID:    actorID,
		ActorRole:  actorRole,
		Payload: map[string]any{
			"worker_id":   workerID,
			"worker_zone": worker.Zone,
		},
	}); err != nil {
		s.log.ErrorContext(ctx, "audit append failed", "complaint_id", complaintID, "error", err)
	}
	return a, nil
}

// Complete closes the open assignment for a complaint. The complaint's own
// terminal transition happens through the resolution flow, not here.
func (s *Service) Complete(ctx context.Context, complaintID int64, notes string) (Assignment, error) {
	a, open, err := s.repo.GetOpenByComplaint(ctx, complaintID)
	if err != nil {
		return Assignment{}, err
	}
	if !open {
		return Assignment{}, ErrNotFound
	}
	return s.repo.CompleteAssignment(ctx, a.ID, notes, s.clock().UTC())
}
