package assignment

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory store for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu          sync.Mutex
	workers     map[string]FieldWorker
	assignments []Assignment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{workers: make(map[string]FieldWorker)}
}

func (r *MemoryRepo) ListWorkers(ctx context.Context) ([]FieldWorker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.workers))
	for id := range r.workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]FieldWorker, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.workers[id])
	}
	return out, nil
}

func (r *MemoryRepo) GetWorker(ctx context.Context, id string) (FieldWorker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return FieldWorker{}, ErrWorkerNotFound
	}
	return w, nil
}

func (r *MemoryRepo) SeedWorkers(ctx context.Context, workers []FieldWorker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range workers {
		if _, exists := r.workers[w.ID]; !exists {
			r.workers[w.ID] = w
		}
	}
	return nil
}

func (r *MemoryRepo) CreateAssignment(ctx context.Context, a Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = append(r.assignments, a)
	return nil
}

func (r *MemoryRepo) GetOpenByComplaint(ctx context.Context, complaintID int64) (Assignment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.ComplaintID == complaintID && a.Status == AssignmentStatusAssigned {
			return a, true, nil
		}
	}
	return Assignment{}, false, nil
}

func (r *MemoryRepo) ListByWorker(ctx context.Context, workerID string) ([]Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Assignment
	for _, a := range r.assignments {
		if a.WorkerID == workerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemoryRepo) CompleteAssignment(ctx context.Context, id, notes string, now time.Time) (Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.assignments {
		if r.assignments[i].ID == id {
			r.assignments[i].Status = AssignmentStatusCompleted
			r.assignments[i].Notes = notes
			r.assignments[i].CompletedAt = &now
			return r.assignments[i], nil
		}
	}
	return Assignment{}, ErrNotFound
}
