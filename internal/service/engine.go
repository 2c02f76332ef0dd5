package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
	"github.com/aifmhub/fund-approvals/internal/domain/policy"
)

// CreateRequestInput is the caller-supplied input for a new approval request.
type CreateRequestInput struct {
	TenantID        string
	CompanyID       string
	Domain          string
	Type            string
	Title           string
	Description     string
	Data            map[string]interface{}
	ChangePreview   string
	RequestedBy     string
	RequestedByName string
	RequestedByRole string
	RequestComment  string
	IPAddress       string
}

// ApprovalEngine runs the four-eyes workflow: it creates requests, records
// votes and recomputes the aggregate status after each one.
type ApprovalEngine interface {
	CreateRequest(ctx context.Context, input CreateRequestInput) (*approval.Request, error)
	Vote(ctx context.Context, auth approval.AuthContext, tenantID, requestID string, decision approval.Decision, comment, ipAddress string) (*approval.Request, error)
	GetRequest(ctx context.Context, tenantID, requestID string) (*approval.Request, error)
}

type approvalEngine struct {
	policies *policy.Registry
	store    RequestStore
	audit    AuditSink
	logger   *zap.Logger
	now      func() time.Time
}

// NewApprovalEngine creates a new approval engine.
func NewApprovalEngine(policies *policy.Registry, store RequestStore, audit AuditSink, logger *zap.Logger) ApprovalEngine {
	return &approvalEngine{
		policies: policies,
		store:    store,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateRequest validates the input, resolves the policy and persists a new
// request. Requests whose extracted value falls under the policy's
// auto-approve threshold are created directly as APPROVED with a single
// synthetic system vote; everything else starts PENDING with no votes.
func (e *approvalEngine) CreateRequest(ctx context.Context, input CreateRequestInput) (*approval.Request, error) {
	if input.TenantID == "" {
		return nil, approval.NewValidationError("tenantId", "is required")
	}
	if input.CompanyID == "" {
		return nil, approval.NewValidationError("companyId", "is required")
	}
	if input.Type == "" {
		return nil, approval.NewValidationError("type", "is required")
	}
	if input.Title == "" {
		return nil, approval.NewValidationError("title", "is required")
	}
	if input.RequestedBy == "" {
		return nil, approval.NewValidationError("requestedBy", "is required")
	}

	pol, err := e.policies.Get(input.Domain, input.Type)
	if err != nil {
		e.logger.Error("No policy registered for request",
			zap.String("domain", input.Domain),
			zap.String("type", input.Type),
			zap.Error(err))
		return nil, err
	}

	now := e.now()
	req := &approval.Request{
		ID:              uuid.NewString(),
		TenantID:        input.TenantID,
		CompanyID:       input.CompanyID,
		Domain:          input.Domain,
		Type:            input.Type,
		Title:           input.Title,
		Description:     input.Description,
		Data:            input.Data,
		ChangePreview:   input.ChangePreview,
		RequestedBy:     input.RequestedBy,
		RequestedByName: input.RequestedByName,
		RequestedByRole: input.RequestedByRole,
		RequestComment:  input.RequestComment,
		IPAddress:       input.IPAddress,
		Status:          approval.StatusPending,
		Votes:           []approval.Vote{},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	autoApproved := false
	if pol.AutoApprove != nil {
		if value, ok := pol.AutoApprove.ExtractValue(input.Data); ok && pol.AutoApprove.Applies(value) {
			req.Status = approval.StatusApproved
			req.Votes = append(req.Votes, approval.Vote{
				UserID:    approval.SystemUserID,
				UserName:  approval.SystemUserID,
				UserRole:  approval.SystemUserID,
				Decision:  approval.DecisionApprove,
				Comment:   "auto-approved under policy threshold",
				Timestamp: now,
			})
			autoApproved = true
		}
	}

	if err := e.store.Create(ctx, req); err != nil {
		return nil, err
	}

	action := approval.AuditActionCreate
	if autoApproved {
		action = approval.AuditActionAutoApprove
	}
	e.audit.Record(ctx, &approval.AuditEntry{
		TenantID:  req.TenantID,
		RequestID: req.ID,
		Action:    action,
		ActorID:   req.RequestedBy,
		ActorName: req.RequestedByName,
		ActorRole: req.RequestedByRole,
		Comment:   req.RequestComment,
		IPAddress: req.IPAddress,
		CreatedAt: now,
	})

	e.logger.Info("Approval request created",
		zap.String("id", req.ID),
		zap.String("tenant_id", req.TenantID),
		zap.String("domain", req.Domain),
		zap.String("type", req.Type),
		zap.String("status", req.Status.String()),
		zap.Bool("auto_approved", autoApproved))

	return req, nil
}

// Vote records one approver's decision and recomputes the request status.
// The conditional store update keyed on the loaded version makes the whole
// operation atomic: either the vote is appended and the new status persisted,
// or the request is left unchanged.
func (e *approvalEngine) Vote(ctx context.Context, auth approval.AuthContext, tenantID, requestID string, decision approval.Decision, comment, ipAddress string) (*approval.Request, error) {
	if !decision.IsValid() {
		return nil, approval.NewValidationError("decision", "must be APPROVE or REJECT")
	}
	if auth.UserID == "" {
		return nil, approval.NewValidationError("userId", "is required")
	}

	req, err := e.store.Get(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, approval.ErrNotFound
	}

	if req.Status.IsTerminal() {
		return nil, approval.ErrAlreadyTerminal
	}
	if req.HasVoted(auth.UserID) {
		return nil, approval.ErrDuplicateVote
	}

	pol, err := e.policies.Get(req.Domain, req.Type)
	if err != nil {
		e.logger.Error("No policy registered for stored request",
			zap.String("id", req.ID),
			zap.String("domain", req.Domain),
			zap.String("type", req.Type),
			zap.Error(err))
		return nil, err
	}

	if !pol.RoleEligible(auth.Role) {
		return nil, approval.ErrNotEligible
	}
	if auth.UserID == req.RequestedBy && !pol.AllowSelfApproval {
		return nil, approval.ErrNotEligible
	}

	now := e.now()
	req.Votes = append(req.Votes, approval.Vote{
		UserID:    auth.UserID,
		UserName:  auth.UserName,
		UserRole:  auth.Role,
		Decision:  decision,
		Comment:   comment,
		IPAddress: ipAddress,
		Timestamp: now,
	})
	req.Status = req.ComputeStatus(pol.RequiredApprovals)
	req.UpdatedAt = now

	expectedVersion := req.Version
	req.Version++

	if err := e.store.Update(ctx, req, expectedVersion); err != nil {
		return nil, err
	}

	e.audit.Record(ctx, &approval.AuditEntry{
		TenantID:  req.TenantID,
		RequestID: req.ID,
		Action:    approval.AuditActionVote,
		ActorID:   auth.UserID,
		ActorName: auth.UserName,
		ActorRole: auth.Role,
		Decision:  decision.String(),
		Comment:   comment,
		IPAddress: ipAddress,
		CreatedAt: now,
	})

	e.logger.Info("Vote recorded",
		zap.String("id", req.ID),
		zap.String("tenant_id", req.TenantID),
		zap.String("voter", auth.UserID),
		zap.String("decision", decision.String()),
		zap.String("status", req.Status.String()),
		zap.Int("approve_count", req.ApproveCount()))

	return req, nil
}

// GetRequest loads a single request scoped by tenant.
func (e *approvalEngine) GetRequest(ctx context.Context, tenantID, requestID string) (*approval.Request, error) {
	req, err := e.store.Get(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, approval.ErrNotFound
	}
	return req, nil
}
