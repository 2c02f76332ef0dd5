package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
	"github.com/aifmhub/fund-approvals/pkg/database"
)

// AuditRepository handles the append-only audit trail
type AuditRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Append records an audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry *approval.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (
			tenant_id, request_id, action, actor_id, actor_name, actor_role,
			decision, comment, ip_address, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.TenantID,
		entry.RequestID,
		entry.Action,
		entry.ActorID,
		entry.ActorName,
		entry.ActorRole,
		entry.Decision,
		entry.Comment,
		entry.IPAddress,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("request_id", entry.RequestID),
			zap.Error(err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}

	return nil
}

// ListByRequest returns the audit trail for one request, oldest first.
func (r *AuditRepository) ListByRequest(ctx context.Context, tenantID, requestID string) ([]*approval.AuditEntry, error) {
	query := `
		SELECT id, tenant_id, request_id, action, actor_id, actor_name,
			actor_role, decision, comment, ip_address, created_at
		FROM audit_entries
		WHERE tenant_id = ? AND request_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, requestID)
	if err != nil {
		r.logger.Error("Failed to list audit entries",
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*approval.AuditEntry
	for rows.Next() {
		var entry approval.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.RequestID,
			&entry.Action,
			&entry.ActorID,
			&entry.ActorName,
			&entry.ActorRole,
			&entry.Decision,
			&entry.Comment,
			&entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
