package audit

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists the audit chain.
//
// Assumes table audit_events (id BIGSERIAL PRIMARY KEY, event_type TEXT,
// entity_type TEXT, entity_id TEXT, action TEXT, actor_id TEXT,
// actor_role TEXT, ts TIMESTAMPTZ, payload TEXT, hash TEXT,
// previous_hash TEXT, signature TEXT, signature_alg TEXT) with an
// INSERT-only policy.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const eventColumns = `
id, event_type, entity_type, entity_id, action, actor_id, actor_role,
ts, payload, hash, previous_hash, signature, signature_alg
`

func (r *PostgresRepo) LatestHash(ctx context.Context) (string, error) {
	const q = `
SELECT hash FROM audit_events ORDER BY id DESC LIMIT 1
`
	var hash string
	if err := r.db.QueryRowContext(ctx, q).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return hash, nil
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) (Event, error) {
	const q = `
INSERT INTO audit_events (
  event_type, entity_type, entity_id, action, actor_id, actor_role,
  ts, payload, hash, previous_hash, signature, signature_alg
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		e.EventType,
		e.EntityType,
		e.EntityID,
		e.Action,
		e.ActorID,
		e.ActorRole,
		e.Timestamp,
		e.Payload,
		e.Hash,
		e.PreviousHash,
		e.Signature,
		e.SignatureAlg,
	).Scan(&e.ID); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (r *PostgresRepo) ListAsc(ctx context.Context) ([]Event, error) {
	const q = `
SELECT ` + eventColumns + `
FROM audit_events
ORDER BY id ASC
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *PostgresRepo) Trail(ctx context.Context, f TrailFilter) ([]Event, error) {
	q := `
SELECT ` + eventColumns + `
FROM audit_events
WHERE ($1 = '' OR entity_type = $1)
  AND ($2 = '' OR entity_id = $2)
ORDER BY id DESC
`
	args := []any{f.EntityType, f.EntityID}
	if f.Limit > 0 {
		q += " LIMIT $3"
		args = append(args, f.Limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID,
			&e.EventType,
			&e.EntityType,
			&e.EntityID,
			&e.Action,
			&e.ActorID,
			&e.ActorRole,
			&e.Timestamp,
			&e.Payload,
			&e.Hash,
			&e.PreviousHash,
			&e.Signature,
			&e.SignatureAlg,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
