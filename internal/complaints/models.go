package complaints

import "time"

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusRejected   Status = "Rejected"
	StatusInvalid    Status = "Invalid"
	StatusDuplicate  Status = "Duplicate"
)

// Terminal reports whether a status ends the complaint's review lifecycle.
// Resolved and Rejected are terminal in practice; Invalid and Duplicate are
// assigned at creation and never transition.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// Intake channels.
const (
	ChannelWeb  = "web"
	ChannelSMS  = "sms"
	ChannelUSSD = "ussd"
)

// Complaint is one citizen grievance after the full intake pipeline.
//
// Invariants:
// - Text, CitizenID, Fingerprint and CreatedAt are immutable once stored.
// - Fingerprint is globally unique; a collision is an integrity error, not
//   a business duplicate (those are caught by the duplicate detector).
// - IsValid, IsDuplicate and DuplicateOf are set once at creation.
// - Complaints are never deleted; resolution mutates status and evidence only.
type Complaint struct {
	ID        int64  `json:"id" db:"id"`
	Text      string `json:"text" db:"text"`
	CitizenID string `json:"citizen_id" db:"citizen_id"`

	Category string `json:"category" db:"category"`
	Urgency  string `json:"urgency" db:"urgency"`
	Status   Status `json:"status" db:"status"`

	Fingerprint string `json:"fingerprint" db:"fingerprint"`

	IsValid           bool   `json:"is_valid" db:"is_valid"`
	ValidationMessage string `json:"validation_message" db:"validation_message"`
	IsDuplicate       bool   `json:"is_duplicate" db:"is_duplicate"`
	DuplicateOf       *int64 `json:"duplicate_of,omitempty" db:"duplicate_of"`

	FraudScore int    `json:"fraud_score" db:"fraud_score"`
	FraudLevel string `json:"fraud_level" db:"fraud_level"`

	// Channel records how the complaint arrived: web, sms or ussd.
	Channel string `json:"channel" db:"channel"`

	// Evidence is attached by the field worker at resolution.
	Evidence string `json:"evidence,omitempty" db:"evidence"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	Status    Status
	CitizenID string
	Category  string
	Limit     int
}
