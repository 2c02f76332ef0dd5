package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
)

func pendingRequest(id, requestType, requestedBy string, votes ...approval.Vote) *approval.Request {
	return &approval.Request{
		ID:          id,
		TenantID:    "tenant-1",
		CompanyID:   "company-1",
		Domain:      "payments",
		Type:        requestType,
		Title:       "Request " + id,
		RequestedBy: requestedBy,
		Status:      approval.StatusPending,
		Votes:       votes,
		Version:     1,
	}
}

func newTestQueryService(t *testing.T, store *mockRequestStore) QueryService {
	t.Helper()
	return NewQueryService(testRegistry(t), store, zap.NewNop())
}

func TestPendingForApprover_EligibilityFiltering(t *testing.T) {
	requests := []*approval.Request{
		pendingRequest("r1", "TRANSFER", "alice"),
		pendingRequest("r2", "TRANSFER", "bob"),
		pendingRequest("r3", "TRANSFER", "alice", approval.Vote{UserID: "carol", Decision: approval.DecisionApprove}),
	}
	store := &mockRequestStore{
		queryFunc: func(_ context.Context, filter approval.Filter) ([]*approval.Request, error) {
			assert.Equal(t, approval.StatusPending, filter.Status)
			return requests, nil
		},
	}
	svc := newTestQueryService(t, store)

	// carol already voted on r3, so only r1 and r2 remain for her
	result, err := svc.PendingForApprover(context.Background(), PendingFilter{
		TenantID:     "tenant-1",
		ApproverID:   "carol",
		ApproverRole: "COMPLIANCE",
	})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "r1", result[0].ID)
	assert.Equal(t, "r2", result[1].ID)

	// bob requested r2 and self-approval is off for TRANSFER
	result, err = svc.PendingForApprover(context.Background(), PendingFilter{
		TenantID:     "tenant-1",
		ApproverID:   "bob",
		ApproverRole: "MANAGER",
	})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "r1", result[0].ID)
	assert.Equal(t, "r3", result[1].ID)

	// an ineligible role sees nothing, even read-only
	result, err = svc.PendingForApprover(context.Background(), PendingFilter{
		TenantID:     "tenant-1",
		ApproverID:   "eve",
		ApproverRole: "VIEWER",
	})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestPendingForApprover_SkipsUnregisteredPolicy(t *testing.T) {
	orphan := pendingRequest("r9", "TRANSFER", "alice")
	orphan.Domain = "legacy"
	store := &mockRequestStore{
		queryFunc: func(context.Context, approval.Filter) ([]*approval.Request, error) {
			return []*approval.Request{orphan, pendingRequest("r1", "TRANSFER", "alice")}, nil
		},
	}
	svc := newTestQueryService(t, store)

	result, err := svc.PendingForApprover(context.Background(), PendingFilter{
		TenantID:     "tenant-1",
		ApproverID:   "bob",
		ApproverRole: "MANAGER",
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "r1", result[0].ID)
}

func TestPendingForApprover_Validation(t *testing.T) {
	svc := newTestQueryService(t, &mockRequestStore{})

	var vErr *approval.ValidationError

	_, err := svc.PendingForApprover(context.Background(), PendingFilter{ApproverRole: "MANAGER"})
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.PendingForApprover(context.Background(), PendingFilter{TenantID: "tenant-1"})
	assert.ErrorAs(t, err, &vErr)
}

func TestSummary(t *testing.T) {
	approved := pendingRequest("r2", "TRANSFER", "bob")
	approved.Status = approval.StatusApproved
	rejected := pendingRequest("r3", "TRANSFER", "bob")
	rejected.Status = approval.StatusRejected
	rejected.Domain = "distributions"

	store := &mockRequestStore{
		queryFunc: func(context.Context, approval.Filter) ([]*approval.Request, error) {
			return []*approval.Request{pendingRequest("r1", "TRANSFER", "alice"), approved, rejected}, nil
		},
	}
	svc := newTestQueryService(t, store)

	summary, err := svc.Summary(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 1, summary.Approved)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 2, summary.ByDomain["payments"])
	assert.Equal(t, 1, summary.ByDomain["distributions"])
}

func TestSearch(t *testing.T) {
	first := pendingRequest("r1", "TRANSFER", "alice")
	first.Title = "Custodian wire Q3"
	second := pendingRequest("r2", "TRANSFER", "bob")
	second.Description = "Follow-up on custodian fees"
	third := pendingRequest("r3", "TRANSFER", "carol")
	third.RequestedByName = "Dana Custodio"

	store := &mockRequestStore{
		queryFunc: func(context.Context, approval.Filter) ([]*approval.Request, error) {
			return []*approval.Request{first, second, third}, nil
		},
	}
	svc := newTestQueryService(t, store)

	result, err := svc.Search(context.Background(), "tenant-1", "CUSTODI")
	require.NoError(t, err)
	assert.Len(t, result, 3)

	result, err = svc.Search(context.Background(), "tenant-1", "wire q3")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "r1", result[0].ID)

	var vErr *approval.ValidationError
	_, err = svc.Search(context.Background(), "tenant-1", "   ")
	assert.ErrorAs(t, err, &vErr)
}
