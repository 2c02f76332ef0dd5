package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
)

// AuditService records create/vote actions and serves the per-request trail.
type AuditService interface {
	AuditSink
	Trail(ctx context.Context, tenantID, requestID string) ([]*approval.AuditEntry, error)
}

// auditService writes entries to the audit store and mirrors them to the
// structured log. Recording is best-effort: a failed write is logged and
// swallowed so the primary approval operation never rolls back on it.
type auditService struct {
	store  AuditStore
	logger *zap.Logger
}

// NewAuditService creates a best-effort audit service over the given store.
func NewAuditService(store AuditStore, logger *zap.Logger) AuditService {
	return &auditService{
		store:  store,
		logger: logger,
	}
}

func (s *auditService) Record(ctx context.Context, entry *approval.AuditEntry) {
	s.logger.Info("Audit event",
		zap.String("tenant_id", entry.TenantID),
		zap.String("request_id", entry.RequestID),
		zap.String("action", entry.Action),
		zap.String("actor_id", entry.ActorID),
		zap.String("actor_role", entry.ActorRole),
		zap.String("decision", entry.Decision),
		zap.String("ip_address", entry.IPAddress))

	if err := s.store.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to persist audit entry",
			zap.String("request_id", entry.RequestID),
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

// Trail returns the recorded audit entries for one request, oldest first.
func (s *auditService) Trail(ctx context.Context, tenantID, requestID string) ([]*approval.AuditEntry, error) {
	return s.store.ListByRequest(ctx, tenantID, requestID)
}
