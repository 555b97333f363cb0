package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/estate/backend/internal/domain/commission"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
)

func setupCommissionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.CommissionRuleModel{}, &models.CommissionModel{})
	require.NoError(t, err)

	return db
}

func newTestRule(t *testing.T, projectID *uuid.UUID, priority int) *commission.Rule {
	t.Helper()
	rule, err := commission.NewRule(
		projectID,
		decimal.NewFromInt(0), decimal.NewFromInt(10),
		commission.RuleTypePercent,
		decimal.NewFromFloat(2.5),
		priority,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return rule
}

func TestCommissionRuleRepository_FindCandidates(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewGormCommissionRuleRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	otherProject := uuid.New()

	scoped := newTestRule(t, &projectID, 10)
	global := newTestRule(t, nil, 5)
	foreign := newTestRule(t, &otherProject, 20)
	inactive := newTestRule(t, &projectID, 30)
	inactive.Deactivate()

	for _, r := range []*commission.Rule{scoped, global, foreign, inactive} {
		require.NoError(t, repo.Save(ctx, r))
	}

	rules, err := repo.FindCandidates(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	ids := []uuid.UUID{rules[0].ID, rules[1].ID}
	assert.Contains(t, ids, scoped.ID)
	assert.Contains(t, ids, global.ID)
}

func TestCommissionRepository_Lifecycle(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewGormCommissionRepository(db)
	ctx := context.Background()

	rule := newTestRule(t, nil, 0)
	c, err := commission.NewCommission(
		uuid.New(), uuid.New(), uuid.New(),
		mustMoneyPKR(t, "250000"),
		&rule.ID,
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	approver := uuid.New()
	require.NoError(t, c.Approve(approver))
	c.IncrementVersion()
	require.NoError(t, repo.SaveWithLock(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, commission.StatusApproved, found.Status)
	require.NotNil(t, found.ApprovedBy)
	assert.Equal(t, approver, *found.ApprovedBy)
	require.NotNil(t, found.RuleID)
	assert.Equal(t, rule.ID, *found.RuleID)
}

func TestCommissionRepository_FindByAgent(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewGormCommissionRepository(db)
	ctx := context.Background()

	agentID := uuid.New()
	for i := 0; i < 3; i++ {
		c, err := commission.NewCommission(
			agentID, uuid.New(), uuid.New(),
			mustMoneyPKR(t, "10000"),
			nil,
		)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
	}

	other, err := commission.NewCommission(
		uuid.New(), uuid.New(), uuid.New(),
		mustMoneyPKR(t, "10000"),
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	commissions, err := repo.FindByAgent(ctx, agentID)
	require.NoError(t, err)
	assert.Len(t, commissions, 3)
}
