package crs

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo persists citizen ratings.
//
// Assumes table citizens (id TEXT PRIMARY KEY, crs_score INT NOT NULL,
// created_at TIMESTAMPTZ NOT NULL, updated_at TIMESTAMPTZ NOT NULL).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Get(ctx context.Context, citizenID string) (Citizen, error) {
	const q = `
SELECT id, crs_score, created_at, updated_at
FROM citizens
WHERE id = $1
`
	var c Citizen
	if err := r.db.QueryRowContext(ctx, q, citizenID).Scan(
		&c.ID,
		&c.CRSScore,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Citizen{}, ErrNotFound
		}
		return Citizen{}, err
	}
	return c, nil
}

func (r *PostgresRepo) ApplyDelta(ctx context.Context, citizenID string, delta, defaultScore int, now time.Time) (Citizen, error) {
	// Single-statement upsert keeps the read-modify-write atomic per citizen
	// without a row lock; GREATEST/LEAST enforce the [0, 100] bounds in-database.
	const q = `
INSERT INTO citizens (id, crs_score, created_at, updated_at)
VALUES ($1, LEAST(100, GREATEST(0, $2 + $3)), $4, $4)
ON CONFLICT (id)
DO UPDATE SET crs_score = LEAST(100, GREATEST(0, citizens.crs_score + $3)),
              updated_at = EXCLUDED.updated_at
RETURNING id, crs_score, created_at, updated_at
`
	var c Citizen
	if err := r.db.QueryRowContext(ctx, q, citizenID, defaultScore, delta, now).Scan(
		&c.ID,
		&c.CRSScore,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return Citizen{}, err
	}
	return c, nil
}
