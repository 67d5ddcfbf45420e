package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gramsetu-backend/internal/analytics"
	"gramsetu-backend/internal/assignment"
	"gramsetu-backend/internal/audit"
	"gramsetu-backend/internal/auth"
	"gramsetu-backend/internal/complaints"
	"gramsetu-backend/internal/crs"
	"gramsetu-backend/internal/fraud"
	"gramsetu-backend/internal/intake"
	"gramsetu-backend/internal/rbac"
	"gramsetu-backend/pkg/logger"
	"gramsetu-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth        *auth.Manager
	Complaints  *complaints.Service
	Ratings     *crs.Service
	Audit       *audit.Service
	Assignments *assignment.Service
	Analytics   *analytics.Service
	Fraud       *fraud.Scorer

	DB    *sql.DB
	Redis *redis.Client

	ThrottleLimit  int
	ThrottleWindow time.Duration
	DashboardTTL   time.Duration
}

// --- Auth ---

type loginRequest struct {
	UserID   string `json:"user_id"`
	District string `json:"district"`
	Role     string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.District == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, district, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.District, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Complaint intake ---

type submitComplaintRequest struct {
	Text      string `json:"text"`
	CitizenID string `json:"citizen_id"`
}

// SubmitComplaint accepts a web submission. A complaint that fails
// validation or duplicate checks is still stored and returned with its
// verdicts; only malformed requests fail at the HTTP layer.
func (h Handlers) SubmitComplaint(c *gin.Context) {
	var req submitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.submit(c, complaints.SubmitRequest{
		Text:      req.Text,
		CitizenID: req.CitizenID,
		Channel:   complaints.ChannelWeb,
	})
}

type smsComplaintRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// SubmitSMS accepts the SMS gateway callback payload.
func (h Handlers) SubmitSMS(c *gin.Context) {
	var req smsComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sub, err := intake.ParseSMS(req.Sender, req.Message)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.submit(c, sub)
}

type ussdComplaintRequest struct {
	Sender string `json:"sender"`
	Input  string `json:"input"`
}

// SubmitUSSD accepts the USSD gateway callback payload.
func (h Handlers) SubmitUSSD(c *gin.Context) {
	var req ussdComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sub, err := intake.ParseUSSD(req.Sender, req.Input)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.submit(c, sub)
}

// submit funnels every intake channel through the one pipeline.
func (h Handlers) submit(c *gin.Context, req complaints.SubmitRequest) {
	if h.Complaints == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "complaints not configured"})
		return
	}
	req.ClientIP = c.ClientIP()
	if role, err := auth.Role(c.Request.Context()); err == nil {
		req.ActorRole = role
	}

	if h.Redis != nil && req.CitizenID != "" {
		ok, err := utils.AllowSubmission(c.Request.Context(), h.Redis, "throttle:submit:"+req.CitizenID, h.ThrottleLimit, h.ThrottleWindow)
		if err != nil {
			// Throttle is advisory; intake must survive a redis outage.
			logger.FromGin(c).Warn("submission throttle check failed", "error", err)
		} else if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "submission limit reached, try again later"})
			return
		}
	}

	res, err := h.Complaints.Submit(c.Request.Context(), req)
	switch {
	case errors.Is(err, complaints.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, complaints.ErrIntegrity):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate submission"})
		return
	case err != nil:
		logger.FromGin(c).Error("complaint submission failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		return
	}
	c.JSON(http.StatusCreated, res)
}

// --- Complaint review ---

func (h Handlers) ListComplaints(c *gin.Context) {
	if h.Complaints == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "complaints not configured"})
		return
	}
	f := complaints.ListFilter{
		Status:    complaints.Status(c.Query("status")),
		CitizenID: c.Query("citizen_id"),
		Category:  c.Query("category"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		f.Limit = n
	}
	rows, err := h.Complaints.List(c.Request.Context(), f)
	if err != nil {
		logger.FromGin(c).Error("complaint list failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": rows, "count": len(rows)})
}

func (h Handlers) GetComplaint(c *gin.Context) {
	if h.Complaints == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "complaints not configured"})
		return
	}
	id, ok := complaintID(c)
	if !ok {
		return
	}
	row, err := h.Complaints.GetByID(c.Request.Context(), id)
	if errors.Is(err, complaints.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, row)
}

type resolveComplaintRequest struct {
	Status   string `json:"status"`
	Evidence string `json:"evidence,omitempty"`
}

// ResolveComplaint moves a complaint through review.
// RBAC: officer or field_worker (enforced in routes).
func (h Handlers) ResolveComplaint(c *gin.Context) {
	if h.Complaints == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "complaints not configured"})
		return
	}
	id, ok := complaintID(c)
	if !ok {
		return
	}
	var req resolveComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	actorID, _ := auth.UserID(c.Request.Context())
	actorRole, _ := auth.Role(c.Request.Context())

	row, err := h.Complaints.Resolve(c.Request.Context(), id, complaints.ResolveRequest{
		Status:    complaints.Status(req.Status),
		Evidence:  req.Evidence,
		ActorID:   actorID,
		ActorRole: actorRole,
	})
	switch {
	case errors.Is(err, complaints.ErrInvalidStatus):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, complaints.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		return
	case err != nil:
		logger.FromGin(c).Error("complaint resolution failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "resolution failed"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// --- Citizens ---

// GetCitizen returns the citizen's rating plus their recent complaints.
func (h Handlers) GetCitizen(c *gin.Context) {
	if h.Ratings == nil || h.Complaints == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "ratings not configured"})
		return
	}
	citizenID := c.Param("id")
	if citizenID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "citizen id required"})
		return
	}
	citizen, err := h.Ratings.Get(c.Request.Context(), citizenID)
	if errors.Is(err, crs.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "citizen not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	recent, err := h.Complaints.RecentByCitizen(c.Request.Context(), citizenID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"citizen": citizen, "recent_complaints": recent})
}

// --- Fraud ---

// CheckFraud scores a text without persisting anything. Officers use it
// to pre-screen suspicious submissions; recent-activity signals are not
// applied here because nothing is being submitted.
func (h Handlers) CheckFraud(c *gin.Context) {
	if h.Fraud == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "fraud scorer not configured"})
		return
	}
	var in fraud.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	c.JSON(http.StatusOK, h.Fraud.Assess(in, fraud.Activity{}))
}

// --- Dashboard ---

const dashboardCacheKey = "cache:dashboard"

// Dashboard serves the analytics snapshot, cached briefly in redis so a
// wall of officer browsers does not hammer the store.
func (h Handlers) Dashboard(c *gin.Context) {
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics not configured"})
		return
	}
	if h.Redis != nil {
		if b, err := utils.CacheGet(c.Request.Context(), h.Redis, dashboardCacheKey); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}
	d, err := h.Analytics.Dashboard(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("dashboard build failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "dashboard failed"})
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(d); err == nil {
			if err := utils.CacheSet(c.Request.Context(), h.Redis, dashboardCacheKey, b, h.DashboardTTL); err != nil {
				logger.FromGin(c).Warn("dashboard cache write failed", "error", err)
			}
		}
	}
	c.JSON(http.StatusOK, d)
}

func (h Handlers) WorkerPerformance(c *gin.Context) {
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics not configured"})
		return
	}
	stats, err := h.Analytics.WorkerPerformance(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "worker stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": stats})
}

// --- Field workers / assignments ---

func (h Handlers) ListWorkers(c *gin.Context) {
	if h.Assignments == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "assignments not configured"})
		return
	}
	workers, err := h.Assignments.Workers(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "worker list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": workers})
}

func (h Handlers) WorkerAssignments(c *gin.Context) {
	if h.Assignments == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "assignments not configured"})
		return
	}
	rows, err := h.Assignments.WorkerAssignments(c.Request.Context(), c.Param("id"))
	if errors.Is(err, assignment.ErrWorkerNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "worker not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "assignment list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": rows})
}

type assignRequest struct {
	WorkerID string `json:"worker_id"`
}

// AssignComplaint hands a complaint to a field worker.
// RBAC: officer or super_admin.
func (h Handlers) AssignComplaint(c *gin.Context) {
	if h.Assignments == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "assignments not configured"})
		return
	}
	id, ok := complaintID(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WorkerID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "worker_id required"})
		return
	}
	actorID, _ := auth.UserID(c.Request.Context())
	actorRole, _ := auth.Role(c.Request.Context())

	a, err := h.Assignments.Assign(c.Request.Context(), id, req.WorkerID, actorID, actorRole)
	switch {
	case errors.Is(err, assignment.ErrWorkerNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "worker not found"})
		return
	case errors.Is(err, complaints.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		return
	case errors.Is(err, assignment.ErrWorkerInactive):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "worker is inactive"})
		return
	case errors.Is(err, assignment.ErrAlreadyAssigned):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "complaint already assigned"})
		return
	case err != nil:
		logger.FromGin(c).Error("assignment failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "assignment failed"})
		return
	}
	c.JSON(http.StatusCreated, a)
}

type completeAssignmentRequest struct {
	Notes string `json:"notes,omitempty"`
}

func (h Handlers) CompleteAssignment(c *gin.Context) {
	if h.Assignments == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "assignments not configured"})
		return
	}
	id, ok := complaintID(c)
	if !ok {
		return
	}
	var req completeAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Assignments.Complete(c.Request.Context(), id, req.Notes)
	if errors.Is(err, assignment.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no open assignment for complaint"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "completion failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// --- Audit ---

type auditLogRequest struct {
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// LogAuditEvent appends an external event to the chain.
// RBAC: officer, auditor or super_admin.
func (h Handlers) LogAuditEvent(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	var req auditLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	actorID, _ := auth.UserID(c.Request.Context())
	actorRole, _ := auth.Role(c.Request.Context())

	ev, err := h.Audit.LogEvent(c.Request.Context(), audit.Entry{
		EventType:  req.EventType,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Action:     req.Action,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Payload:    req.Payload,
	})
	if errors.Is(err, audit.ErrInvalidEvent) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("audit append failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit append failed"})
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h Handlers) VerifyAuditChain(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	res, err := h.Audit.VerifyChain(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) AuditTrail(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	f := audit.TrailFilter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		f.Limit = n
	}
	rows, err := h.Audit.GetTrail(c.Request.Context(), f)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "trail lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": rows, "count": len(rows)})
}

// --- Health ---

// Healthz reports component health. Degraded components make the whole
// endpoint 503 so load balancers stop routing here.
func (h Handlers) Healthz(c *gin.Context) {
	components := gin.H{}
	healthy := true

	if h.DB != nil {
		if err := utils.HealthCheck(c.Request.Context(), h.DB, 2*time.Second); err != nil {
			components["postgres"] = "down"
			healthy = false
		} else {
			components["postgres"] = "ok"
		}
	} else {
		components["postgres"] = "not configured"
	}

	if h.Redis != nil {
		if err := h.Redis.Ping(c.Request.Context()).Err(); err != nil {
			components["redis"] = "down"
			healthy = false
		} else {
			components["redis"] = "ok"
		}
	} else {
		components["redis"] = "not configured"
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "components": components})
}

// --- Helpers ---

func complaintID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid complaint id"})
		return 0, false
	}
	return id, true
}

// Convenience middleware bundles.

func RequireDistrictAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireDistrict(), rbac.RequireAnyRole(roles...)}
}
