package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"gramsetu-backend/pkg/hashchain"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided.
type Repository interface {
	// LatestHash returns the hash of the most recently appended event,
	// or the empty string when the chain is empty.
	LatestHash(ctx context.Context) (string, error)
	// Append persists the event and returns it with its assigned ID.
	Append(ctx context.Context, e Event) (Event, error)
	// ListAsc returns the full chain in insertion order.
	ListAsc(ctx context.Context) ([]Event, error)
	// Trail returns filtered events, most recent first.
	Trail(ctx context.Context, f TrailFilter) ([]Event, error)
}

var ErrInvalidEvent = errors.New("audit: invalid event")

// Entry is the caller-facing input to LogEvent.
type Entry struct {
	EventType  string
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	ActorRole  string
	Payload    map[string]any

	// SigningKey, when set, attaches an HMAC signature over the event hash.
	SigningKey []byte
}

// Service maintains the hash chain.
//
// The mutex serializes "read latest hash, compute, append" so no two
// events can claim the same previous hash. A single process owns the
// chain tail, which the lock guarantees.
type Service struct {
	repo  Repository
	clock func() time.Time

	mu sync.Mutex
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// timestampLayout must format exactly what verification re-derives.
const timestampLayout = time.RFC3339Nano

// LogEvent appends one event to the chain and returns the stored record.
func (s *Service) LogEvent(ctx context.Context, entry Entry) (Event, error) {
	if entry.EventType == "" || entry.EntityType == "" || entry.EntityID == "" || entry.Action == "" {
		return Event{}, ErrInvalidEvent
	}
	payload, err := hashchain.CanonicalJSON(entry.Payload)
	if err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.repo.LatestHash(ctx)
	if err != nil {
		return Event{}, err
	}

	e := Event{
		EventType:    entry.EventType,
		EntityType:   entry.EntityType,
		EntityID:     entry.EntityID,
		Action:       entry.Action,
		ActorID:      entry.ActorID,
		ActorRole:    entry.ActorRole,
		Timestamp:    s.clock().UTC().Truncate(time.Microsecond),
		Payload:      payload,
		PreviousHash: prev,
	}
	e.Hash, err = computeHash(e)
	if err != nil {
		return Event{}, err
	}
	if len(entry.SigningKey) > 0 {
		e.Signature = hashchain.Sign(e.Hash, entry.SigningKey)
		e.SignatureAlg = hashchain.SignatureAlgHMACSHA256
	}
	return s.repo.Append(ctx, e)
}

// VerifyChain recomputes every hash in insertion order. A mismatch marks
// that event tampered; the scan always covers the full chain.
func (s *Service) VerifyChain(ctx context.Context) (VerifyResult, error) {
	events, err := s.repo.ListAsc(ctx)
	if err != nil {
		return VerifyResult{}, err
	}
	res := VerifyResult{TotalEvents: len(events)}
	prevHash := ""
	for _, e := range events {
		want, err := computeHash(e)
		if err != nil {
			return VerifyResult{}, err
		}
		if want != e.Hash || e.PreviousHash != prevHash {
			res.TamperedIDs = append(res.TamperedIDs, e.ID)
		}
		prevHash = e.Hash
	}
	res.Verified = len(res.TamperedIDs) == 0
	if len(events) > 0 {
		res.VerificationRate = float64(len(events)-len(res.TamperedIDs)) / float64(len(events))
	} else {
		res.VerificationRate = 1
	}
	return res, nil
}

// GetTrail returns filtered events, most recent first.
func (s *Service) GetTrail(ctx context.Context, f TrailFilter) ([]Event, error) {
	return s.repo.Trail(ctx, f)
}

// VerifySignature checks the optional HMAC on an event.
func (s *Service) VerifySignature(e Event, key []byte) bool {
	if e.Signature == "" {
		return false
	}
	return hashchain.VerifySignature(e.Hash, e.Signature, key)
}

// computeHash derives the event's self-hash from its canonical document.
func computeHash(e Event) (string, error) {
	doc, err := hashchain.CanonicalJSON(canonicalDoc(e))
	if err != nil {
		return "", err
	}
	return hashchain.Fingerprint(doc, ""), nil
}

func canonicalDoc(e Event) map[string]any {
	return map[string]any{
		"event_type":    e.EventType,
		"entity_type":   e.EntityType,
		"entity_id":     e.EntityID,
		"action":        e.Action,
		"actor_id":      e.ActorID,
		"actor_role":    e.ActorRole,
		"timestamp":     e.Timestamp.UTC().Format(timestampLayout),
		"payload":       e.Payload,
		"previous_hash": e.PreviousHash,
	}
}
