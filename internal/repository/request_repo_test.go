package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
	"github.com/aifmhub/fund-approvals/pkg/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.Run(migrationsDir(t)))

	return db
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	// repository package sits two levels below the repo root
	return filepath.Join("..", "..", "migrations")
}

func sampleRequest(id string) *approval.Request {
	now := time.Now().UTC().Truncate(time.Second)
	return &approval.Request{
		ID:              id,
		TenantID:        "tenant-1",
		CompanyID:       "company-1",
		Domain:          "payments",
		Type:            "TRANSFER",
		Title:           "Wire to custodian",
		Description:     "Quarterly settlement",
		Data:            map[string]interface{}{"amount": 50000.0},
		RequestedBy:     "alice",
		RequestedByName: "Alice",
		RequestedByRole: "MANAGER",
		IPAddress:       "10.0.0.1",
		Status:          approval.StatusPending,
		Votes:           []approval.Vote{},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestRequestRepository_CreateAndGet(t *testing.T) {
	repo := NewRequestRepository(testDB(t), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleRequest("req-1")))

	got, err := repo.Get(ctx, "tenant-1", "req-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Wire to custodian", got.Title)
	assert.Equal(t, approval.StatusPending, got.Status)
	assert.Equal(t, int64(1), got.Version)
	assert.Empty(t, got.Votes)
	assert.Equal(t, 50000.0, got.Data["amount"])
}

func TestRequestRepository_GetAbsentAndForeignTenant(t *testing.T) {
	repo := NewRequestRepository(testDB(t), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleRequest("req-1")))

	got, err := repo.Get(ctx, "tenant-1", "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.Get(ctx, "tenant-2", "req-1")
	require.NoError(t, err)
	assert.Nil(t, got, "foreign-tenant lookup must behave like not found")
}

func TestRequestRepository_ConditionalUpdate(t *testing.T) {
	repo := NewRequestRepository(testDB(t), zap.NewNop())
	ctx := context.Background()

	req := sampleRequest("req-1")
	require.NoError(t, repo.Create(ctx, req))

	req.Votes = append(req.Votes, approval.Vote{
		UserID:    "bob",
		UserRole:  "MANAGER",
		Decision:  approval.DecisionApprove,
		Timestamp: time.Now().UTC(),
	})
	req.Version = 2
	req.UpdatedAt = time.Now().UTC()

	require.NoError(t, repo.Update(ctx, req, 1))

	got, err := repo.Get(ctx, "tenant-1", "req-1")
	require.NoError(t, err)
	require.Len(t, got.Votes, 1)
	assert.Equal(t, "bob", got.Votes[0].UserID)
	assert.Equal(t, int64(2), got.Version)

	// a second writer holding the stale version must lose
	stale := sampleRequest("req-1")
	stale.Version = 2
	err = repo.Update(ctx, stale, 1)
	assert.ErrorIs(t, err, approval.ErrConcurrentModification)
}

func TestRequestRepository_Query(t *testing.T) {
	repo := NewRequestRepository(testDB(t), zap.NewNop())
	ctx := context.Background()

	first := sampleRequest("req-1")
	require.NoError(t, repo.Create(ctx, first))

	second := sampleRequest("req-2")
	second.CompanyID = "company-2"
	second.Status = approval.StatusApproved
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))

	third := sampleRequest("req-3")
	third.Domain = "distributions"
	third.Type = "DISTRIBUTION"
	third.CreatedAt = third.CreatedAt.Add(2 * time.Second)
	require.NoError(t, repo.Create(ctx, third))

	all, err := repo.Query(ctx, approval.Filter{TenantID: "tenant-1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "req-3", all[0].ID, "newest first")

	pending, err := repo.Query(ctx, approval.Filter{TenantID: "tenant-1", Status: approval.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	byCompany, err := repo.Query(ctx, approval.Filter{TenantID: "tenant-1", CompanyID: "company-2"})
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, "req-2", byCompany[0].ID)

	byDomain, err := repo.Query(ctx, approval.Filter{TenantID: "tenant-1", Domain: "distributions", Type: "DISTRIBUTION"})
	require.NoError(t, err)
	require.Len(t, byDomain, 1)
	assert.Equal(t, "req-3", byDomain[0].ID)

	other, err := repo.Query(ctx, approval.Filter{TenantID: "tenant-2"})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAuditRepository_AppendAndList(t *testing.T) {
	db := testDB(t)
	repo := NewAuditRepository(db, zap.NewNop())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	first := &approval.AuditEntry{
		TenantID:  "tenant-1",
		RequestID: "req-1",
		Action:    approval.AuditActionCreate,
		ActorID:   "alice",
		ActorRole: "MANAGER",
		IPAddress: "10.0.0.1",
		CreatedAt: now,
	}
	require.NoError(t, repo.Append(ctx, first))
	assert.NotZero(t, first.ID)

	require.NoError(t, repo.Append(ctx, &approval.AuditEntry{
		TenantID:  "tenant-1",
		RequestID: "req-1",
		Action:    approval.AuditActionVote,
		ActorID:   "bob",
		Decision:  "APPROVE",
		CreatedAt: now.Add(time.Second),
	}))

	entries, err := repo.ListByRequest(ctx, "tenant-1", "req-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, approval.AuditActionCreate, entries[0].Action)
	assert.Equal(t, approval.AuditActionVote, entries[1].Action)

	entries, err = repo.ListByRequest(ctx, "tenant-2", "req-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
