package crs

import "time"

// Citizen is the rating-system view of a citizen.
//
// Invariants:
// - CRSScore always stays within [0, 100].
// - A citizen row is created lazily at the default score on first touch.
// - Score updates are atomic per citizen; concurrent submissions must not
//   lose increments.
type Citizen struct {
	ID        string    `json:"id" db:"id"`
	CRSScore  int       `json:"crs_score" db:"crs_score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	ScoreMin = 0
	ScoreMax = 100
)
