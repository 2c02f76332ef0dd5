package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
	"github.com/aifmhub/fund-approvals/pkg/database"
)

// RequestRepository handles approval request persistence
type RequestRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *database.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `
	id, tenant_id, company_id, domain, request_type, title, description,
	payload, change_preview, requested_by, requested_by_name, requested_by_role,
	request_comment, ip_address, status, votes, version, created_at, updated_at
`

// Create persists a new approval request.
func (r *RequestRepository) Create(ctx context.Context, req *approval.Request) error {
	payload, votes, err := marshalRequestJSON(req)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO approval_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		req.ID,
		req.TenantID,
		req.CompanyID,
		req.Domain,
		req.Type,
		req.Title,
		req.Description,
		payload,
		req.ChangePreview,
		req.RequestedBy,
		req.RequestedByName,
		req.RequestedByRole,
		req.RequestComment,
		req.IPAddress,
		string(req.Status),
		votes,
		req.Version,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// Get retrieves a request by tenant and id. Returns (nil, nil) when the
// request does not exist or belongs to a different tenant.
func (r *RequestRepository) Get(ctx context.Context, tenantID, id string) (*approval.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE tenant_id = ? AND id = ?`

	row := r.db.QueryRowContext(ctx, query, tenantID, id)
	req, err := scanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return req, nil
}

// Update performs a conditional write: the row is only updated when its
// stored version still equals expectedVersion. A lost race surfaces as
// approval.ErrConcurrentModification so the caller can reload and retry.
func (r *RequestRepository) Update(ctx context.Context, req *approval.Request, expectedVersion int64) error {
	payload, votes, err := marshalRequestJSON(req)
	if err != nil {
		return err
	}

	query := `
		UPDATE approval_requests
		SET status = ?, votes = ?, payload = ?, version = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(req.Status),
		votes,
		payload,
		req.Version,
		req.UpdatedAt,
		req.TenantID,
		req.ID,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to update request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return approval.ErrConcurrentModification
	}

	return nil
}

// Query returns requests matching the filter, newest first.
func (r *RequestRepository) Query(ctx context.Context, filter approval.Filter) ([]*approval.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE tenant_id = ?`
	args := []interface{}{filter.TenantID}

	if filter.CompanyID != "" {
		query += " AND company_id = ?"
		args = append(args, filter.CompanyID)
	}
	if filter.Domain != "" {
		query += " AND domain = ?"
		args = append(args, filter.Domain)
	}
	if filter.Type != "" {
		query += " AND request_type = ?"
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query requests", zap.Error(err))
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*approval.Request
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func marshalRequestJSON(req *approval.Request) (payload string, votes string, err error) {
	payloadBytes, err := json.Marshal(req.Data)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	if req.Votes == nil {
		req.Votes = []approval.Vote{}
	}
	voteBytes, err := json.Marshal(req.Votes)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal votes: %w", err)
	}

	return string(payloadBytes), string(voteBytes), nil
}

func scanRequest(scan func(dest ...interface{}) error) (*approval.Request, error) {
	var req approval.Request
	var payload, votes, status string

	err := scan(
		&req.ID,
		&req.TenantID,
		&req.CompanyID,
		&req.Domain,
		&req.Type,
		&req.Title,
		&req.Description,
		&payload,
		&req.ChangePreview,
		&req.RequestedBy,
		&req.RequestedByName,
		&req.RequestedByRole,
		&req.RequestComment,
		&req.IPAddress,
		&status,
		&votes,
		&req.Version,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = approval.Status(status)

	if payload != "" && payload != "null" {
		if err := json.Unmarshal([]byte(payload), &req.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request payload: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(votes), &req.Votes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal votes: %w", err)
	}

	return &req, nil
}
