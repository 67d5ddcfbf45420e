package crs

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory rating store for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu       sync.Mutex
	citizens map[string]Citizen
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{citizens: make(map[string]Citizen)}
}

func (r *MemoryRepo) Get(ctx context.Context, citizenID string) (Citizen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.citizens[citizenID]
	if !ok {
		return Citizen{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ApplyDelta(ctx context.Context, citizenID string, delta, defaultScore int, now time.Time) (Citizen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.citizens[citizenID]
	if !ok {
		c = Citizen{ID: citizenID, CRSScore: defaultScore, CreatedAt: now}
	}
	c.CRSScore = clamp(c.CRSScore + delta)
	c.UpdatedAt = now
	r.citizens[citizenID] = c
	return c, nil
}

func clamp(score int) int {
	if score < ScoreMin {
		return ScoreMin
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return score
}
