package audit

import "time"

// Event is an immutable, hash-chained audit record.
//
// Invariants:
// - Events are never updated or deleted; signing happens at append time.
// - Hash covers event_type, entity_type, entity_id, action, actor_id,
//   actor_role, timestamp, payload and previous_hash (see canonicalDoc).
// - PreviousHash links to the prior event's stored hash; the first event
//   links to the empty string.
// - Timestamp is UTC, truncated to microseconds so the value survives a
//   Postgres timestamptz round trip and verification can re-derive the
//   exact string that was hashed.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
type Event struct {
	ID         int64  `json:"id" db:"id"`
	EventType  string `json:"event_type" db:"event_type"`
	EntityType string `json:"entity_type" db:"entity_type"`
	EntityID   string `json:"entity_id" db:"entity_id"`
	Action     string `json:"action" db:"action"`

	ActorID string `json:"actor_id,omitempty" db:"actor_id"`
	// ActorRole may include hidden roles.
	ActorRole string `json:"actor_role,omitempty" db:"actor_role"`

	Timestamp time.Time `json:"timestamp" db:"ts"`

	// Payload is the canonical JSON form of the event details.
	Payload string `json:"payload" db:"payload"`

	Hash         string `json:"hash" db:"hash"`
	PreviousHash string `json:"previous_hash" db:"previous_hash"`

	// Signature is optional, additive metadata; its absence is not an
	// integrity failure.
	Signature    string `json:"signature,omitempty" db:"signature"`
	SignatureAlg string `json:"signature_alg,omitempty" db:"signature_alg"`
}

// Event types written by the pipeline and the officer surface.
const (
	EventTypeComplaint  = "complaint"
	EventTypeResolution = "resolution"
	EventTypeAssignment = "assignment"
	EventTypeAuth       = "auth"
)

// VerifyResult reports a full-chain verification pass.
// TamperedIDs is complete: verification never stops at the first mismatch.
type VerifyResult struct {
	Verified         bool    `json:"verified"`
	TotalEvents      int     `json:"total_events"`
	TamperedIDs      []int64 `json:"tampered_event_ids"`
	VerificationRate float64 `json:"verification_rate"`
}

// TrailFilter narrows GetTrail. Zero values mean "any".
type TrailFilter struct {
	EntityType string
	EntityID   string
	Limit      int
}
