package analytics

import (
	"context"
	"sync"

	"gramsetu-backend/internal/assignment"
	"gramsetu-backend/internal/complaints"
)

// MemoryRepo is a simple in-memory analytics source for tests and early
// development.
type MemoryRepo struct {
	mu sync.Mutex

	Complaints  []complaints.Complaint
	Assignments []assignment.Assignment
	Workers     []assignment.FieldWorker
	CRSScores   map[string]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{CRSScores: map[string]int{}}
}

func (r *MemoryRepo) ListComplaints(ctx context.Context) ([]complaints.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]complaints.Complaint, len(r.Complaints))
	copy(out, r.Complaints)
	return out, nil
}

func (r *MemoryRepo) ListAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]assignment.Assignment, len(r.Assignments))
	copy(out, r.Assignments)
	return out, nil
}

func (r *MemoryRepo) ListWorkers(ctx context.Context) ([]assignment.FieldWorker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]assignment.FieldWorker, len(r.Workers))
	copy(out, r.Workers)
	return out, nil
}

func (r *MemoryRepo) AverageCRS(ctx context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.CRSScores) == 0 {
		return 0, nil
	}
	sum := 0
	for _, s := range r.CRSScores {
		sum += s
	}
	return float64(sum) / float64(len(r.CRSScores)), nil
}
