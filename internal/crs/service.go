package crs

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("crs: citizen not found")

// Repository is the persistence contract for citizen ratings.
//
// ApplyDelta must be atomic per citizen: create the row at defaultScore
// when absent, then add delta and clamp to [ScoreMin, ScoreMax] in one
// step. Two concurrent deltas must both land.
type Repository interface {
	Get(ctx context.Context, citizenID string) (Citizen, error)
	ApplyDelta(ctx context.Context, citizenID string, delta, defaultScore int, now time.Time) (Citizen, error)
}

// Deltas are the score adjustments per submission outcome.
type Deltas struct {
	DefaultScore     int
	PenaltyInvalid   int
	PenaltyDuplicate int
	RewardValid      int
}

// Service applies rating transitions. Every submission moves the score:
// trust is earned slowly (+1 per genuine complaint) and lost quickly.
type Service struct {
	repo   Repository
	deltas Deltas
	clock  func() time.Time
}

func NewService(repo Repository, deltas Deltas) *Service {
	return &Service{repo: repo, deltas: deltas, clock: time.Now}
}

// Get returns the citizen's current rating.
func (s *Service) Get(ctx context.Context, citizenID string) (Citizen, error) {
	return s.repo.Get(ctx, citizenID)
}

// ApplySubmission adjusts the score for one pipeline outcome and returns
// the updated citizen. Invalid submissions are penalized hardest; a valid
// duplicate is a lesser offense; a valid unique complaint earns the reward.
func (s *Service) ApplySubmission(ctx context.Context, citizenID string, valid, duplicate bool) (Citizen, error) {
	var delta int
	switch {
	case !valid:
		delta = -s.deltas.PenaltyInvalid
	case duplicate:
		delta = -s.deltas.PenaltyDuplicate
	default:
		delta = s.deltas.RewardValid
	}
	return s.repo.ApplyDelta(ctx, citizenID, delta, s.deltas.DefaultScore, s.clock().UTC())
}

// ApplyResolution adjusts the score when a complaint reaches a terminal
// state: a resolved complaint vindicates the citizen, a rejected one
// costs the same as a duplicate.
func (s *Service) ApplyResolution(ctx context.Context, citizenID string, resolved bool) (Citizen, error) {
	delta := s.deltas.RewardValid
	if !resolved {
		delta = -s.deltas.PenaltyDuplicate
	}
	return s.repo.ApplyDelta(ctx, citizenID, delta, s.deltas.DefaultScore, s.clock().UTC())
}
