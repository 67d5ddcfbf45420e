package analytics

import "time"

// Dashboard is the officer-facing snapshot of the intake system.
type Dashboard struct {
	TotalComplaints int            `json:"total_complaints"`
	StatusCounts    map[string]int `json:"status_counts"`
	CategoryCounts  map[string]int `json:"category_counts"`
	UrgentOpen      int            `json:"urgent_open"`

	Escalations     []Escalation `json:"escalations"`
	EscalationCount int          `json:"escalation_count"`

	AverageCRS float64 `json:"average_crs"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Escalation is a complaint left unresolved past the escalation window.
type Escalation struct {
	ComplaintID int64   `json:"complaint_id"`
	Category    string  `json:"category"`
	Urgency     string  `json:"urgency"`
	AgeHours    float64 `json:"age_hours"`
}

// WorkerStats summarizes one field worker's assignment record.
type WorkerStats struct {
	WorkerID       string  `json:"worker_id"`
	Name           string  `json:"name"`
	Zone           string  `json:"zone"`
	Assigned       int     `json:"assigned"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}
