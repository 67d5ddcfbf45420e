package complaints

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory complaint store for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu           sync.Mutex
	complaints   []Complaint
	fingerprints map[string]struct{}
	nextID       int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{fingerprints: make(map[string]struct{}), nextID: 1}
}

func (r *MemoryRepo) Insert(ctx context.Context, c Complaint) (Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.fingerprints[c.Fingerprint]; exists {
		return Complaint{}, ErrIntegrity
	}
	c.ID = r.nextID
	r.nextID++
	r.fingerprints[c.Fingerprint] = struct{}{}
	r.complaints = append(r.complaints, c)
	return c, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.complaints {
		if c.ID == id {
			return c, nil
		}
	}
	return Complaint{}, ErrNotFound
}

func (r *MemoryRepo) ListByCitizen(ctx context.Context, citizenID string, since time.Time) ([]Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Complaint
	for _, c := range r.complaints {
		if c.CitizenID == citizenID && !c.CreatedAt.Before(since) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) CountByCitizenSince(ctx context.Context, citizenID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.complaints {
		if c.CitizenID == citizenID && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Complaint
	for i := len(r.complaints) - 1; i >= 0; i-- {
		c := r.complaints[i]
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.CitizenID != "" && c.CitizenID != f.CitizenID {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		out = append(out, c)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepo) UpdateResolution(ctx context.Context, id int64, status Status, evidence string, now time.Time) (Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.complaints {
		if r.complaints[i].ID == id {
			r.complaints[i].Status = status
			if evidence != "" {
				r.complaints[i].Evidence = evidence
			}
			r.complaints[i].UpdatedAt = now
			return r.complaints[i], nil
		}
	}
	return Complaint{}, ErrNotFound
}
