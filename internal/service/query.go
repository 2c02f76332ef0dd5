package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
	"github.com/aifmhub/fund-approvals/internal/domain/policy"
)

// PendingFilter narrows a per-approver worklist query.
type PendingFilter struct {
	TenantID     string
	CompanyID    string
	Domain       string
	Type         string
	ApproverID   string
	ApproverRole string
}

// Summary aggregates a tenant's requests by status and domain.
type Summary struct {
	Total    int            `json:"total"`
	Pending  int            `json:"pending"`
	Approved int            `json:"approved"`
	Rejected int            `json:"rejected"`
	ByDomain map[string]int `json:"by_domain"`
}

// QueryService builds read-only views over the request store. Worklists are
// filtered by approver eligibility so a caller never sees requests their
// role cannot act on.
type QueryService interface {
	PendingForApprover(ctx context.Context, filter PendingFilter) ([]*approval.Request, error)
	AllPending(ctx context.Context, tenantID string) ([]*approval.Request, error)
	Summary(ctx context.Context, tenantID string) (*Summary, error)
	Search(ctx context.Context, tenantID, term string) ([]*approval.Request, error)
	AllRequests(ctx context.Context, tenantID string) ([]*approval.Request, error)
}

type queryService struct {
	policies *policy.Registry
	store    RequestStore
	logger   *zap.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(policies *policy.Registry, store RequestStore, logger *zap.Logger) QueryService {
	return &queryService{
		policies: policies,
		store:    store,
		logger:   logger,
	}
}

/// PendingForApprover returns pending requests the given approver may act on:
// their role must be eligible under each request's policy, they must not
// have voted already, and self-approval gating applies.
func (s *queryService) PendingForApprover(ctx context.Context, filter PendingFilter) ([]*approval.Request, error) {
	if filter.TenantID == "" {
		return nil, approval.NewValidationError("tenantId", "is required")
	}
	if filter.ApproverRole == "" {
		return nil, approval.NewValidationError("approverRole", "is required")
	}

	requests, err := s.store.Query(ctx, approval.Filter{
		TenantID:  filter.TenantID,
		CompanyID: filter.CompanyID,
		Domain:    filter.Domain,
		Type:      filter.Type,
		Status:    approval.StatusPending,
	})
	if err != nil {
		return nil, err
	}

	eligible := make([]*approval.Request, 0, len(requests))
	for _, req := range requests {
		pol, err := s.policies.Get(req.Domain, req.Type)
		if err != nil {
			if errors.Is(err, policy.ErrPolicyNotFound) {
				// A stored request without a registered policy is a
				// configuration defect; never expose it in a worklist.
				s.logger.Error("Stored request has no registered policy",
					zap.String("id", req.ID),
					zap.String("domain", req.Domain),
					zap.String("type", req.Type))
				continue
			}
			return nil, err
		}

		if !pol.RoleEligible(filter.ApproverRole) {
			continue
		}
		if filter.ApproverID != "" {
			if req.HasVoted(filter.ApproverID) {
				continue
			}
			if req.RequestedBy == filter.ApproverID && !pol.AllowSelfApproval {
				continue
			}
		}

		eligible = append(eligible, req)
	}

	return eligible, nil
}

// AllPending returns every pending request for a tenant.
func (s *queryService) AllPending(ctx context.Context, tenantID string) ([]*approval.Request, error) {
	if tenantID == "" {
		return nil, approval.NewValidationError("tenantId", "is required")
	}
	return s.store.Query(ctx, approval.Filter{
		TenantID: tenantID,
		Status:   approval.StatusPending,
	})
}

// Summary returns request counts by status and by domain for a tenant.
func (s *queryService) Summary(ctx context.Context, tenantID string) (*Summary, error) {
	if tenantID == "" {
		return nil, approval.NewValidationError("tenantId", "is required")
	}

	requests, err := s.store.Query(ctx, approval.Filter{TenantID: tenantID})
	if err != nil {
		return nil, err
	}

	summary := &Summary{ByDomain: make(map[string]int)}
	for _, req := range requests {
		summary.Total++
		summary.ByDomain[req.Domain]++
		switch req.Status {
		case approval.StatusPending:
			summary.Pending++
		case approval.StatusApproved:
			summary.Approved++
		case approval.StatusRejected:
			summary.Rejected++
		}
	}

	return summary, nil
}

// Search returns a tenant's requests whose title, description or requester
// name contains the term, case-insensitively.
func (s *queryService) Search(ctx context.Context, tenantID, term string) ([]*approval.Request, error) {
	if tenantID == "" {
		return nil, approval.NewValidationError("tenantId", "is required")
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, approval.NewValidationError("term", "is required")
	}

	requests, err := s.store.Query(ctx, approval.Filter{TenantID: tenantID})
	if err != nil {
		return nil, err
	}

	var matched []*approval.Request
	for _, req := range requests {
		if strings.Contains(strings.ToLower(req.Title), term) ||
			strings.Contains(strings.ToLower(req.Description), term) ||
			strings.Contains(strings.ToLower(req.RequestedByName), term) {
			matched = append(matched, req)
		}
	}

	return matched, nil
}

// AllRequests returns every request for a tenant, newest first.
func (s *queryService) AllRequests(ctx context.Context, tenantID string) ([]*approval.Request, error) {
	if tenantID == "" {
		return nil, approval.NewValidationError("tenantId", "is required")
	}
	return s.store.Query(ctx, approval.Filter{TenantID: tenantID})
}
