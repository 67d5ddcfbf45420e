package complaints

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo persists complaints.
//
// Assumes table complaints (id BIGSERIAL PRIMARY KEY, text TEXT,
// citizen_id TEXT, category TEXT, urgency TEXT, status TEXT,
// fingerprint TEXT UNIQUE, is_valid BOOL, validation_message TEXT,
// is_duplicate BOOL, duplicate_of BIGINT, fraud_score INT,
// fraud_level TEXT, channel TEXT, evidence TEXT,
// created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const complaintColumns = `
id, text, citizen_id, category, urgency, status, fingerprint,
is_valid, validation_message, is_duplicate, duplicate_of,
fraud_score, fraud_level, channel, evidence, created_at, updated_at
`

func (r *PostgresRepo) Insert(ctx context.Context, c Complaint) (Complaint, error) {
	const q = `
INSERT INTO complaints (
  text, citizen_id, category, urgency, status, fingerprint,
  is_valid, validation_message, is_duplicate, duplicate_of,
  fraud_score, fraud_level, channel, evidence, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
)
RETURNING id
`
	err := r.db.QueryRowContext(ctx, q,
		c.Text,
		c.CitizenID,
		c.Category,
		c.Urgency,
		c.Status,
		c.Fingerprint,
		c.IsValid,
		c.ValidationMessage,
		c.IsDuplicate,
		c.DuplicateOf,
		c.FraudScore,
		c.FraudLevel,
		c.Channel,
		c.Evidence,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Complaint{}, ErrIntegrity
		}
		return Complaint{}, err
	}
	return c, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Complaint, error) {
	const q = `
SELECT ` + complaintColumns + `
FROM complaints
WHERE id = $1
`
	c, err := scanComplaint(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Complaint{}, ErrNotFound
		}
		return Complaint{}, err
	}
	return c, nil
}

func (r *PostgresRepo) ListByCitizen(ctx context.Context, citizenID string, since time.Time) ([]Complaint, error) {
	const q = `
SELECT ` + complaintColumns + `
FROM complaints
WHERE citizen_id = $1 AND created_at >= $2
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, citizenID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *PostgresRepo) CountByCitizenSince(ctx context.Context, citizenID string, since time.Time) (int, error) {
	const q = `
SELECT COUNT(*)
FROM complaints
WHERE citizen_id = $1 AND created_at >= $2
`
	var n int
	if err := r.db.QueryRowContext(ctx, q, citizenID, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Complaint, error) {
	q := `
SELECT ` + complaintColumns + `
FROM complaints
WHERE ($1 = '' OR status = $1)
  AND ($2 = '' OR citizen_id = $2)
  AND ($3 = '' OR category = $3)
ORDER BY created_at DESC
`
	args := []any{string(f.Status), f.CitizenID, f.Category}
	if f.Limit > 0 {
		q += " LIMIT $4"
		args = append(args, f.Limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *PostgresRepo) UpdateResolution(ctx context.Context, id int64, status Status, evidence string, now time.Time) (Complaint, error) {
	const q = `
UPDATE complaints
SET status = $2,
    evidence = CASE WHEN $3 = '' THEN evidence ELSE $3 END,
    updated_at = $4
WHERE id = $1
RETURNING ` + complaintColumns + `
`
	c, err := scanComplaint(r.db.QueryRowContext(ctx, q, id, status, evidence, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Complaint{}, ErrNotFound
		}
		return Complaint{}, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (Complaint, error) {
	var c Complaint
	var duplicateOf sql.NullInt64
	if err := row.Scan(
		&c.ID,
		&c.Text,
		&c.CitizenID,
		&c.Category,
		&c.Urgency,
		&c.Status,
		&c.Fingerprint,
		&c.IsValid,
		&c.ValidationMessage,
		&c.IsDuplicate,
		&duplicateOf,
		&c.FraudScore,
		&c.FraudLevel,
		&c.Channel,
		&c.Evidence,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return Complaint{}, err
	}
	if duplicateOf.Valid {
		c.DuplicateOf = &duplicateOf.Int64
	}
	return c, nil
}

func scanComplaints(rows *sql.Rows) ([]Complaint, error) {
	var out []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
