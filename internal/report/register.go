// Package report renders admin-facing exports of the approval register.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
)

const registerSheet = "Approvals"

var registerHeaders = []string{
	"Request ID", "Company", "Domain", "Type", "Title", "Status",
	"Requested By", "Requester Role", "Votes", "Approvals", "Rejections",
	"Created", "Updated",
}

// RegisterExporter renders a tenant's approval requests as an xlsx workbook.
type RegisterExporter struct {
	logger *zap.Logger
}

// NewRegisterExporter creates a new register exporter.
func NewRegisterExporter(logger *zap.Logger) *RegisterExporter {
	return &RegisterExporter{logger: logger}
}

// Render produces the workbook bytes for the given requests.
func (e *RegisterExporter) Render(requests []*approval.Request) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range registerHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(registerSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(registerSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, req := range requests {
		rejections := 0
		for _, v := range req.Votes {
			if v.Decision == approval.DecisionReject {
				rejections++
			}
		}

		values := []interface{}{
			req.ID,
			req.CompanyID,
			req.Domain,
			req.Type,
			req.Title,
			req.Status.String(),
			req.RequestedByName,
			req.RequestedByRole,
			len(req.Votes),
			req.ApproveCount(),
			rejections,
			req.CreatedAt.Format(time.RFC3339),
			req.UpdatedAt.Format(time.RFC3339),
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(registerSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	e.logger.Info("Approval register rendered", zap.Int("rows", len(requests)))
	return buf.Bytes(), nil
}
