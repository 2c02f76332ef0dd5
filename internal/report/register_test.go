package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
)

func TestRegisterExporter_Render(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	requests := []*approval.Request{
		{
			ID:              "req-1",
			TenantID:        "tenant-1",
			CompanyID:       "company-1",
			Domain:          "payments",
			Type:            "TRANSFER",
			Title:           "Wire to custodian",
			Status:          approval.StatusApproved,
			RequestedByName: "Alice",
			RequestedByRole: "MANAGER",
			Votes: []approval.Vote{
				{UserID: "bob", Decision: approval.DecisionApprove},
				{UserID: "carol", Decision: approval.DecisionApprove},
			},
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
		{
			ID:              "req-2",
			TenantID:        "tenant-1",
			CompanyID:       "company-1",
			Domain:          "payments",
			Type:            "PAYMENT",
			Title:           "Vendor invoice",
			Status:          approval.StatusRejected,
			RequestedByName: "Bob",
			RequestedByRole: "MANAGER",
			Votes: []approval.Vote{
				{UserID: "carol", Decision: approval.DecisionReject},
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
	}

	raw, err := NewRegisterExporter(zap.NewNop()).Render(requests)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{registerSheet}, f.GetSheetList())

	rows, err := f.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, registerHeaders, rows[0])

	assert.Equal(t, "req-1", rows[1][0])
	assert.Equal(t, "APPROVED", rows[1][5])
	assert.Equal(t, "2", rows[1][8], "vote count")
	assert.Equal(t, "2", rows[1][9], "approvals")
	assert.Equal(t, "0", rows[1][10], "rejections")

	assert.Equal(t, "req-2", rows[2][0])
	assert.Equal(t, "REJECTED", rows[2][5])
	assert.Equal(t, "1", rows[2][10], "rejections")
}

func TestRegisterExporter_RenderEmpty(t *testing.T) {
	raw, err := NewRegisterExporter(zap.NewNop()).Render(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
