package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
	"github.com/aifmhub/fund-approvals/internal/domain/policy"
	"github.com/aifmhub/fund-approvals/internal/report"
	"github.com/aifmhub/fund-approvals/internal/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine   service.ApprovalEngine
	queries  service.QueryService
	audit    service.AuditService
	policies *policy.Registry
	exporter *report.RegisterExporter
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine service.ApprovalEngine,
	queries service.QueryService,
	audit service.AuditService,
	policies *policy.Registry,
	exporter *report.RegisterExporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		engine:   engine,
		queries:  queries,
		audit:    audit,
		policies: policies,
		exporter: exporter,
		logger:   logger,
	}
}

// Response is the standard JSON envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateRequestBody is the payload for POST /api/requests
type CreateRequestBody struct {
	CompanyID      string                 `json:"company_id"`
	Domain         string                 `json:"domain"`
	Type           string                 `json:"type"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Data           map[string]interface{} `json:"data"`
	ChangePreview  string                 `json:"change_preview"`
	RequestComment string                 `json:"request_comment"`
}

// VoteBody is the payload for POST /api/requests/:id/votes
type VoteBody struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"service":   "fund-approvals",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateRequest handles POST /api/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	auth := authFrom(c)
	req, err := h.engine.CreateRequest(c.Request.Context(), service.CreateRequestInput{
		TenantID:        tenantFrom(c),
		CompanyID:       body.CompanyID,
		Domain:          body.Domain,
		Type:            body.Type,
		Title:           body.Title,
		Description:     body.Description,
		Data:            body.Data,
		ChangePreview:   body.ChangePreview,
		RequestedBy:     auth.UserID,
		RequestedByName: auth.UserName,
		RequestedByRole: auth.Role,
		RequestComment:  body.RequestComment,
		IPAddress:       c.ClientIP(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: req})
}

// Vote handles POST /api/requests/:id/votes
func (h *Handlers) Vote(c *gin.Context) {
	var body VoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	req, err := h.engine.Vote(
		c.Request.Context(),
		authFrom(c),
		tenantFrom(c),
		c.Param("id"),
		approval.Decision(body.Decision),
		body.Comment,
		c.ClientIP(),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// GetRequest handles GET /api/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	req, err := h.engine.GetRequest(c.Request.Context(), tenantFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// GetAuditTrail handles GET /api/requests/:id/audit
func (h *Handlers) GetAuditTrail(c *gin.Context) {
	entries, err := h.audit.Trail(c.Request.Context(), tenantFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ListPending handles GET /api/pending: the caller's eligibility-filtered
// worklist.
func (h *Handlers) ListPending(c *gin.Context) {
	auth := authFrom(c)
	requests, err := h.queries.PendingForApprover(c.Request.Context(), service.PendingFilter{
		TenantID:     tenantFrom(c),
		CompanyID:    c.Query("company_id"),
		Domain:       c.Query("domain"),
		Type:         c.Query("type"),
		ApproverID:   auth.UserID,
		ApproverRole: auth.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// ListAllPending handles GET /api/pending/all
func (h *Handlers) ListAllPending(c *gin.Context) {
	requests, err := h.queries.AllPending(c.Request.Context(), tenantFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// GetSummary handles GET /api/summary
func (h *Handlers) GetSummary(c *gin.Context) {
	summary, err := h.queries.Summary(c.Request.Context(), tenantFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// Search handles GET /api/search?q=
func (h *Handlers) Search(c *gin.Context) {
	requests, err := h.queries.Search(c.Request.Context(), tenantFrom(c), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// ExportRegister handles GET /api/export: the approval register workbook.
func (h *Handlers) ExportRegister(c *gin.Context) {
	requests, err := h.queries.AllRequests(c.Request.Context(), tenantFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	workbook, err := h.exporter.Render(requests)
	if err != nil {
		h.logger.Error("Failed to render approval register", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to render register"})
		return
	}

	filename := fmt.Sprintf("approval-register-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		workbook)
}

// ListPolicies handles GET /api/policies, optionally narrowed by ?domain=
func (h *Handlers) ListPolicies(c *gin.Context) {
	if domain := c.Query("domain"); domain != "" {
		c.JSON(http.StatusOK, Response{Success: true, Data: h.policies.ByDomain(domain)})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.policies.All()})
}

// respondError maps domain errors to HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var vErr *approval.ValidationError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: vErr.Error()})
	case errors.Is(err, approval.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, approval.ErrNotEligible):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, approval.ErrAlreadyTerminal),
		errors.Is(err, approval.ErrDuplicateVote),
		errors.Is(err, approval.ErrConcurrentModification):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, policy.ErrPolicyNotFound):
		h.logger.Error("Policy configuration defect", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
