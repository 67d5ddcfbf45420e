package analytics

import (
	"context"
	"errors"
	"time"

	"gramsetu-backend/internal/assignment"
	"gramsetu-backend/internal/complaints"
)

// EscalationWindow is how long a complaint may sit unresolved before it
// appears on the dashboard's escalation list.
const EscalationWindow = 72 * time.Hour

// Repository abstracts data access for analytics.
// Implementations read from the complaint, assignment and rating stores;
// aggregation happens here, not in SQL, so both backends behave the same.
type Repository interface {
	ListComplaints(ctx context.Context) ([]complaints.Complaint, error)
	ListAssignments(ctx context.Context) ([]assignment.Assignment, error)
	ListWorkers(ctx context.Context) ([]assignment.FieldWorker, error)
	AverageCRS(ctx context.Context) (float64, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Dashboard builds the full snapshot in one pass over the complaint list.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s.repo == nil {
		return Dashboard{}, errors.New("analytics: repository not configured")
	}
	rows, err := s.repo.ListComplaints(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.clock().UTC()

	out := Dashboard{
		StatusCounts:   map[string]int{},
		CategoryCounts: map[string]int{},
		GeneratedAt:    now,
	}
	for _, c := range rows {
		out.TotalComplaints++
		out.StatusCounts[string(c.Status)]++
		out.CategoryCounts[c.Category]++

		open := c.Status == complaints.StatusPending || c.Status == complaints.StatusInProgress
		if open && c.Urgency == "High" {
			out.UrgentOpen++
		}
		if open && now.Sub(c.CreatedAt) > EscalationWindow {
			out.Escalations = append(out.Escalations, Escalation{
				ComplaintID: c.ID,
				Category:    c.Category,
				Urgency:     c.Urgency,
				AgeHours:    now.Sub(c.CreatedAt).Hours(),
			})
		}
	}
	out.EscalationCount = len(out.Escalations)

	avg, err := s.repo.AverageCRS(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	out.AverageCRS = avg
	return out, nil
}

// WorkerPerformance reports assignment throughput per field worker.
func (s *Service) WorkerPerformance(ctx context.Context) ([]WorkerStats, error) {
	if s.repo == nil {
		return nil, errors.New("analytics: repository not configured")
	}
	workers, err := s.repo.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}

	byWorker := map[string]*WorkerStats{}
	out := make([]WorkerStats, 0, len(workers))
	for _, w := range workers {
		out = append(out, WorkerStats{WorkerID: w.ID, Name: w.Name, Zone: w.Zone})
		byWorker[w.ID] = &out[len(out)-1]
	}
	for _, a := range rows {
		st, ok := byWorker[a.WorkerID]
		if !ok {
			continue
		}
		st.Assigned++
		if a.Status == assignment.AssignmentStatusCompleted {
			st.Completed++
		}
	}
	for i := range out {
		if out[i].Assigned > 0 {
			out[i].CompletionRate = float64(out[i].Completed) / float64(out[i].Assigned)
		}
	}
	return out, nil
}
