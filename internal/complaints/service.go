package complaints

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gramsetu-backend/internal/audit"
	"gramsetu-backend/internal/classify"
	"gramsetu-backend/internal/crs"
	"gramsetu-backend/internal/dedupe"
	"gramsetu-backend/internal/fraud"
	"gramsetu-backend/internal/validation"
	"gramsetu-backend/pkg/hashchain"
)

var (
	ErrNotFound      = errors.New("complaints: not found")
	ErrInvalidInput  = errors.New("complaints: citizen_id is required")
	ErrInvalidStatus = errors.New("complaints: invalid status transition")
	// ErrIntegrity marks a fingerprint collision: the same text hashed with
	// the same timestamp already exists.
	ErrIntegrity = errors.New("complaints: fingerprint collision")
)

// Repository is the persistence contract for complaints.
type Repository interface {
	// Insert persists a new complaint and returns it with its assigned ID.
	// A fingerprint uniqueness violation surfaces as ErrIntegrity.
	Insert(ctx context.Context, c Complaint) (Complaint, error)
	GetByID(ctx context.Context, id int64) (Complaint, error)
	// ListByCitizen returns the citizen's complaints created at or after
	// since, newest first.
	ListByCitizen(ctx context.Context, citizenID string, since time.Time) ([]Complaint, error)
	CountByCitizenSince(ctx context.Context, citizenID string, since time.Time) (int, error)
	List(ctx context.Context, f ListFilter) ([]Complaint, error)
	// UpdateResolution sets status and evidence on an existing complaint.
	UpdateResolution(ctx context.Context, id int64, status Status, evidence string, now time.Time) (Complaint, error)
}

// SubmitRequest is the channel-normalized intake payload. Every intake
// surface (web, SMS, USSD) reduces to this before entering the pipeline.
type SubmitRequest struct {
	Text      string `json:"text"`
	CitizenID string `json:"citizen_id"`
	Channel   string `json:"channel,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`

	// ActorRole defaults to citizen; officers may submit on behalf of one.
	ActorRole string `json:"-"`
}

// SubmitResult carries the stored complaint plus every stage verdict, so
// the submitter sees why a complaint was marked Invalid or Duplicate.
type SubmitResult struct {
	Complaint      Complaint         `json:"complaint"`
	Validation     validation.Result `json:"validation"`
	DuplicateMatch *dedupe.Match     `json:"duplicate_match,omitempty"`
	Classification classify.Result   `json:"classification"`
	Fraud          fraud.Assessment  `json:"fraud"`
	CRSScore       int               `json:"crs_score"`
}

// Service orchestrates the intake pipeline. Every capability is injected
// at construction; the service holds no lazily-initialized state.
type Service struct {
	repo       Repository
	validator  *validation.Validator
	detector   *dedupe.Detector
	classifier *classify.Classifier
	scorer     *fraud.Scorer
	ratings    *crs.Service
	auditor    *audit.Service

	dupWindow time.Duration
	clock     func() time.Time
	log       *slog.Logger
}

func NewService(
	repo Repository,
	validator *validation.Validator,
	detector *dedupe.Detector,
	classifier *classify.Classifier,
	scorer *fraud.Scorer,
	ratings *crs.Service,
	auditor *audit.Service,
	dupWindow time.Duration,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:       repo,
		validator:  validator,
		detector:   detector,
		classifier: classifier,
		scorer:     scorer,
		ratings:    ratings,
		auditor:    auditor,
		dupWindow:  dupWindow,
		clock:      time.Now,
		log:        log,
	}
}

// Submit runs the full pipeline for one submission:
// validate, duplicate-check, classify, risk-score, CRS update, persist,
// audit. No stage is skipped on earlier rejection: an Invalid complaint is
// still classified, scored and stored so officers can review it. The final
// status is derived once, after all stages ran.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if req.CitizenID == "" {
		return SubmitResult{}, ErrInvalidInput
	}
	if req.Channel == "" {
		req.Channel = ChannelWeb
	}
	now := s.clock().UTC()

	// Context validation.
	vres := s.validator.Validate(req.Text)

	// Duplicate detection against the citizen's window of prior complaints.
	history, err := s.repo.ListByCitizen(ctx, req.CitizenID, now.Add(-s.dupWindow))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("complaints: load history: %w", err)
	}
	priors := make([]dedupe.PriorComplaint, 0, len(history))
	for _, h := range history {
		priors = append(priors, dedupe.PriorComplaint{
			ID:        h.ID,
			Text:      h.Text,
			CreatedAt: h.CreatedAt,
			Invalid:   h.Status == StatusInvalid,
		})
	}
	match, isDup := s.detector.FindDuplicate(ctx, req.Text, now, priors)

	// Classification and urgency.
	cls := s.classifier.Classify(ctx, req.Text)
	urgency := s.classifier.DetectUrgency(req.Text)

	// Fraud scoring over recent activity.
	activity, err := s.recentActivity(ctx, req.CitizenID, now)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("complaints: load activity: %w", err)
	}
	assessment := s.scorer.Assess(fraud.Input{
		Text:      req.Text,
		CitizenID: req.CitizenID,
		ClientIP:  req.ClientIP,
	}, activity)

	// CRS update precedes the complaint write; a failed write after a
	// successful CRS update is a logged inconsistency, not a rollback.
	citizen, err := s.ratings.ApplySubmission(ctx, req.CitizenID, vres.Valid, isDup)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("complaints: apply rating: %w", err)
	}

	// Status derived once, after every stage completed.
	status := StatusPending
	switch {
	case !vres.Valid:
		status = StatusInvalid
	case isDup:
		status = StatusDuplicate
	}

	c := Complaint{
		Text:              req.Text,
		CitizenID:         req.CitizenID,
		Category:          cls.Category,
		Urgency:           urgency,
		Status:            status,
		Fingerprint:       hashchain.Fingerprint(req.Text, now.Format(time.RFC3339Nano)),
		IsValid:           vres.Valid,
		ValidationMessage: vres.Reason,
		IsDuplicate:       isDup,
		FraudScore:        assessment.Score,
		FraudLevel:        assessment.Level,
		Channel:           req.Channel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if isDup {
		dupID := match.ComplaintID
		c.DuplicateOf = &dupID
	}

	stored, err := s.repo.Insert(ctx, c)
	if err != nil {
		return SubmitResult{}, err
	}

	// Complaint write precedes the audit append referencing its ID. A failed
	// append leaves an unaudited complaint; that is surfaced in logs, never
	// rolled back and never swallowed silently.
	s.appendAudit(ctx, audit.Entry{
		EventType:  audit.EventTypeComplaint,
		EntityType: "complaint",
		EntityID:   fmt.Sprintf("%d", stored.ID),
		Action:     "created",
		ActorID:    req.CitizenID,
		ActorRole:  actorRoleOrCitizen(req.ActorRole),
		Payload: map[string]any{
			"status":       string(stored.Status),
			"category":     stored.Category,
			"urgency":      stored.Urgency,
			"is_valid":     stored.IsValid,
			"is_duplicate": stored.IsDuplicate,
			"fraud_score":  stored.FraudScore,
			"fraud_level":  stored.FraudLevel,
			"channel":      stored.Channel,
		},
	})

	result := SubmitResult{
		Complaint:      stored,
		Validation:     vres,
		Classification: cls,
		Fraud:          assessment,
		CRSScore:       citizen.CRSScore,
	}
	if isDup {
		m := match
		result.DuplicateMatch = &m
	}
	return result, nil
}

// ResolveRequest updates a complaint's review status.
type ResolveRequest struct {
	Status    Status `json:"status"`
	Evidence  string `json:"evidence,omitempty"`
	ActorID   string `json:"-"`
	ActorRole string `json:"-"`
}

// Resolve moves a complaint through review. The CRS side effect and the
// resolution audit event fire only on a transition into a terminal state;
// writing the same terminal status again returns the current record
// unchanged.
func (s *Service) Resolve(ctx context.Context, id int64, req ResolveRequest) (Complaint, error) {
	switch req.Status {
	case StatusInProgress, StatusResolved, StatusRejected:
	default:
		return Complaint{}, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Complaint{}, err
	}
	if current.Status.Terminal() {
		return current, nil
	}

	now := s.clock().UTC()
	updated, err := s.repo.UpdateResolution(ctx, id, req.Status, req.Evidence, now)
	if err != nil {
		return Complaint{}, err
	}

	if req.Status.Terminal() {
		if _, err := s.ratings.ApplyResolution(ctx, updated.CitizenID, req.Status == StatusResolved); err != nil {
			s.log.ErrorContext(ctx, "rating update failed after resolution",
				"complaint_id", id, "citizen_id", updated.CitizenID, "error", err)
		}
	}
	action := "status_updated"
	eventType := audit.EventTypeComplaint
	if req.Status.Terminal() {
		action = "resolved"
		eventType = audit.EventTypeResolution
		if req.Status == StatusRejected {
			action = "rejected"
		}
	}
	s.appendAudit(ctx, audit.Entry{
		EventType:  eventType,
		EntityType: "complaint",
		EntityID:   fmt.Sprintf("%d", id),
		Action:     action,
		ActorID:    req.ActorID,
		ActorRole:  req.ActorRole,
		Payload: map[string]any{
			"status":   string(req.Status),
			"evidence": req.Evidence,
		},
	})
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Complaint, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Complaint, error) {
	return s.repo.List(ctx, f)
}

// RecentByCitizen returns the citizen's complaints inside the duplicate
// window, newest first. Used by the citizen lookup surface.
func (s *Service) RecentByCitizen(ctx context.Context, citizenID string) ([]Complaint, error) {
	return s.repo.ListByCitizen(ctx, citizenID, s.clock().UTC().Add(-s.dupWindow))
}

func (s *Service) recentActivity(ctx context.Context, citizenID string, now time.Time) (fraud.Activity, error) {
	hourly, err := s.repo.CountByCitizenSince(ctx, citizenID, now.Add(-time.Hour))
	if err != nil {
		return fraud.Activity{}, err
	}
	daily, err := s.repo.CountByCitizenSince(ctx, citizenID, now.Add(-24*time.Hour))
	if err != nil {
		return fraud.Activity{}, err
	}
	return fraud.Activity{ComplaintsLastHour: hourly, ComplaintsLastDay: daily}, nil
}

func (s *Service) appendAudit(ctx context.Context, entry audit.Entry) {
	if _, err := s.auditor.LogEvent(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			"entity_id", entry.EntityID, "action", entry.Action, "error", err)
	}
}

func actorRoleOrCitizen(role string) string {
	if role == "" {
		return "citizen"
	}
	return role
}
