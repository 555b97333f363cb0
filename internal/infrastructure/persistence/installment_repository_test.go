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

	"github.com/estate/backend/internal/domain/installment"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
)

func setupInstallmentTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.InstallmentPlanModel{})
	require.NoError(t, err)

	return db
}

func newTestPlan(t *testing.T) *installment.Plan {
	t.Helper()
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	plan, err := installment.NewPlan(
		uuid.New(), uuid.New(), uuid.New(),
		valueobject.NewMoneyPKRFromFloat(1000000),
		valueobject.NewMoneyPKRFromFloat(100000),
		[]installment.InstallmentSpec{
			{DueDate: due, Amount: decimal.NewFromInt(300000)},
			{DueDate: due.AddDate(0, 1, 0), Amount: decimal.NewFromInt(300000)},
			{DueDate: due.AddDate(0, 2, 0), Amount: decimal.NewFromInt(300000)},
		},
	)
	require.NoError(t, err)
	return plan
}

func TestInstallmentRepository_ScheduleRoundTrip(t *testing.T) {
	db := setupInstallmentTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	plan := newTestPlan(t)
	require.NoError(t, repo.Save(ctx, plan))

	found, err := repo.FindByID(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, found.Installments, 3)
	assert.Equal(t, 1, found.Installments[0].InstallmentNo)
	assert.True(t, found.Installments[0].Amount.Equal(decimal.NewFromInt(300000)))
	assert.Equal(t, installment.InstallmentStatusPending, found.Installments[0].Status)
	assert.Equal(t, installment.PlanStatusActive, found.Status)
}

func TestInstallmentRepository_PaymentSurvivesRoundTrip(t *testing.T) {
	db := setupInstallmentTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	plan := newTestPlan(t)
	require.NoError(t, repo.Save(ctx, plan))

	err := plan.PayInstallment(1, valueobject.NewMoneyPKRFromFloat(300000), time.Now())
	require.NoError(t, err)
	plan.IncrementVersion()
	require.NoError(t, repo.SaveWithLock(ctx, plan))

	found, err := repo.FindByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, found.Installments[0].Paid)
	assert.True(t, found.TotalPaid.Amount().Equal(decimal.NewFromInt(300000)))
}

func TestInstallmentRepository_FindByPlot(t *testing.T) {
	db := setupInstallmentTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	plan := newTestPlan(t)
	require.NoError(t, repo.Save(ctx, plan))

	found, err := repo.FindByPlot(ctx, plan.PlotID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, found.ID)

	_, err = repo.FindByPlot(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInstallmentRepository_FindActive(t *testing.T) {
	db := setupInstallmentTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	active := newTestPlan(t)
	cancelled := newTestPlan(t)
	require.NoError(t, cancelled.Cancel())

	require.NoError(t, repo.Save(ctx, active))
	require.NoError(t, repo.Save(ctx, cancelled))

	plans, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, active.ID, plans[0].ID)
}
