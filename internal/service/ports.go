package service

import (
	"context"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
)

// RequestStore is the persistence boundary for approval requests. The engine
// is stateless business logic over loaded/saved snapshots; atomicity of a
// vote is delegated to the store's conditional Update.
type RequestStore interface {
	Create(ctx context.Context, req *approval.Request) error

	// Get returns (nil, nil) when the request is absent or foreign-tenant.
	Get(ctx context.Context, tenantID, id string) (*approval.Request, error)

	// Update must fail with approval.ErrConcurrentModification when the
	// stored version no longer matches expectedVersion.
	Update(ctx context.Context, req *approval.Request, expectedVersion int64) error

	Query(ctx context.Context, filter approval.Filter) ([]*approval.Request, error)
}

// AuditStore persists audit entries.
type AuditStore interface {
	Append(ctx context.Context, entry *approval.AuditEntry) error
	ListByRequest(ctx context.Context, tenantID, requestID string) ([]*approval.AuditEntry, error)
}

// AuditSink records create/vote actions. Implementations are best-effort:
// a failed recording must never roll back the primary operation.
type AuditSink interface {
	Record(ctx context.Context, entry *approval.AuditEntry)
}
