package analytics

import (
	"context"
	"database/sql"

	"gramsetu-backend/internal/assignment"
	"gramsetu-backend/internal/complaints"
)

// PostgresRepo reads analytics inputs from the primary tables.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListComplaints(ctx context.Context) ([]complaints.Complaint, error) {
	const q = `
SELECT id, citizen_id, category, urgency, status, created_at
FROM complaints
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []complaints.Complaint
	for rows.Next() {
		var c complaints.Complaint
		if err := rows.Scan(&c.ID, &c.CitizenID, &c.Category, &c.Urgency, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	const q = `
SELECT id, complaint_id, worker_id, status, assigned_at
FROM assignments
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []assignment.Assignment
	for rows.Next() {
		var a assignment.Assignment
		if err := rows.Scan(&a.ID, &a.ComplaintID, &a.WorkerID, &a.Status, &a.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListWorkers(ctx context.Context) ([]assignment.FieldWorker, error) {
	const q = `
SELECT id, name, zone, phone, active
FROM field_workers
ORDER BY id
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []assignment.FieldWorker
	for rows.Next() {
		var w assignment.FieldWorker
		if err := rows.Scan(&w.ID, &w.Name, &w.Zone, &w.Phone, &w.Active); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) AverageCRS(ctx context.Context) (float64, error) {
	const q = `
SELECT COALESCE(AVG(crs_score), 0)
FROM citizens
`
	var avg float64
	if err := r.db.QueryRowContext(ctx, q).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}
