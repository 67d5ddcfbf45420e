package audit

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory append-only chain useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
	nextID int64
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{nextID: 1} }

func (r *MemoryRepo) LatestHash(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return "", nil
	}
	return r.events[len(r.events)-1].Hash, nil
}

func (r *MemoryRepo) Append(ctx context.Context, e Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	r.events = append(r.events, e)
	return e, nil
}

func (r *MemoryRepo) ListAsc(ctx context.Context) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out, nil
}

func (r *MemoryRepo) Trail(ctx context.Context, f TrailFilter) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Tamper overwrites a stored event in place. Test helper only; the real
// repositories have no mutation path.
func (r *MemoryRepo) Tamper(id int64, mutate func(*Event)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			mutate(&r.events[i])
			return true
		}
	}
	return false
}
