package assignment

import "time"

// FieldWorker is a municipal worker who handles complaints in a zone.
type FieldWorker struct {
	ID     string `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Zone   string `json:"zone" db:"zone"`
	Phone  string `json:"phone,omitempty" db:"phone"`
	Active bool   `json:"active" db:"active"`
}

type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// Assignment links one complaint to one field worker.
// A complaint carries at most one open assignment at a time.
type Assignment struct {
	ID          string           `json:"id" db:"id"`
	ComplaintID int64            `json:"complaint_id" db:"complaint_id"`
	WorkerID    string           `json:"worker_id" db:"worker_id"`
	Status      AssignmentStatus `json:"status" db:"status"`
	Notes       string           `json:"notes,omitempty" db:"notes"`
	AssignedAt  time.Time        `json:"assigned_at" db:"assigned_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// DefaultWorkers seeds the pilot roster, one worker per zone.
func DefaultWorkers() []FieldWorker {
	return []FieldWorker{
		{ID: "FW001", Name: "Rajesh Kumar", Zone: "North", Active: true},
		{ID: "FW002", Name: "Priya Singh", Zone: "South", Active: true},
		{ID: "FW003", Name: "Amit Sharma", Zone: "East", Active: true},
		{ID: "FW004", Name: "Deepa Patel", Zone: "West", Active: true},
	}
}
