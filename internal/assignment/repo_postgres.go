package assignment

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo persists workers and assignments.
//
// Assumes tables field_workers (id TEXT PRIMARY KEY, name TEXT, zone TEXT,
// phone TEXT, active BOOL) and assignments (id TEXT PRIMARY KEY,
// complaint_id BIGINT, worker_id TEXT, status TEXT, notes TEXT,
// assigned_at TIMESTAMPTZ, completed_at TIMESTAMPTZ).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListWorkers(ctx context.Context) ([]FieldWorker, error) {
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
	var out []FieldWorker
	for rows.Next() {
		var w FieldWorker
		if err := rows.Scan(&w.ID, &w.Name, &w.Zone, &w.Phone, &w.Active); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetWorker(ctx context.Context, id string) (FieldWorker, error) {
	const q = `
SELECT id, name, zone, phone, active
FROM field_workers
WHERE id = $1
`
	var w FieldWorker
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&w.ID, &w.Name, &w.Zone, &w.Phone, &w.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FieldWorker{}, ErrWorkerNotFound
		}
		return FieldWorker{}, err
	}
	return w, nil
}

func (r *PostgresRepo) SeedWorkers(ctx context.Context, workers []FieldWorker) error {
	const q = `
INSERT INTO field_workers (id, name, zone, phone, active)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO NOTHING
`
	for _, w := range workers {
		if _, err := r.db.ExecContext(ctx, q, w.ID, w.Name, w.Zone, w.Phone, w.Active); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepo) CreateAssignment(ctx context.Context, a Assignment) error {
	const q = `
INSERT INTO assignments (id, complaint_id, worker_id, status, notes, assigned_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	_, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.ComplaintID,
		a.WorkerID,
		a.Status,
		a.Notes,
		a.AssignedAt,
		a.CompletedAt,
	)
	return err
}

func (r *PostgresRepo) GetOpenByComplaint(ctx context.Context, complaintID int64) (Assignment, bool, error) {
	const q = `
SELECT id, complaint_id, worker_id, status, notes, assigned_at, completed_at
FROM assignments
WHERE complaint_id = $1 AND status = 'assigned'
LIMIT 1
`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, q, complaintID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, false, nil
		}
		return Assignment{}, false, err
	}
	return a, true, nil
}

func (r *PostgresRepo) ListByWorker(ctx context.Context, workerID string) ([]Assignment, error) {
	const q = `
SELECT id, complaint_id, worker_id, status, notes, assigned_at, completed_at
FROM assignments
WHERE worker_id = $1
ORDER BY assigned_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CompleteAssignment(ctx context.Context, id, notes string, now time.Time) (Assignment, error) {
	const q = `
UPDATE assignments
SET status = 'completed', notes = $2, completed_at = $3
WHERE id = $1
RETURNING id, complaint_id, worker_id, status, notes, assigned_at, completed_at
`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, q, id, notes, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, ErrNotFound
		}
		return Assignment{}, err
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (Assignment, error) {
	var a Assignment
	var completedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.ComplaintID,
		&a.WorkerID,
		&a.Status,
		&a.Notes,
		&a.AssignedAt,
		&completedAt,
	); err != nil {
		return Assignment{}, err
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}
