package installment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// createTestPlan builds a 3-installment plan: 1,000,000 total, 100,000 down
// payment and three monthly installments of 300,000 starting next month.
func createTestPlan(t *testing.T) *Plan {
	t.Helper()
	start := time.Now().AddDate(0, 1, 0)
	specs := []InstallmentSpec{
		{DueDate: start, Amount: decimal.NewFromInt(300000)},
		{DueDate: start.AddDate(0, 1, 0), Amount: decimal.NewFromInt(300000)},
		{DueDate: start.AddDate(0, 2, 0), Amount: decimal.NewFromInt(300000)},
	}
	plan, err := NewPlan(uuid.New(), uuid.New(), uuid.New(),
		valueobject.NewMoneyPKRFromFloat(1000000),
		valueobject.NewMoneyPKRFromFloat(100000),
		specs)
	require.NoError(t, err)
	return plan
}

func TestNewPlan(t *testing.T) {
	t.Run("valid plan", func(t *testing.T) {
		plan := createTestPlan(t)
		assert.Equal(t, PlanStatusActive, plan.Status)
		assert.Len(t, plan.Installments, 3)
		assert.Equal(t, 1, plan.Installments[0].InstallmentNo)
		assert.Equal(t, 3, plan.Installments[2].InstallmentNo)
		assert.True(t, plan.TotalPaid.IsZero())
		assert.Equal(t, "1000000.00", plan.RemainingAmount.Amount().StringFixed(2))
		require.NotNil(t, plan.NextDueDate)
		assert.Equal(t, plan.Installments[0].DueDate, *plan.NextDueDate)
	})

	t.Run("requires installments", func(t *testing.T) {
		_, err := NewPlan(uuid.New(), uuid.New(), uuid.New(),
			valueobject.NewMoneyPKRFromFloat(1000000),
			valueobject.ZeroPKR(), nil)
		assert.Error(t, err)
	})

	t.Run("requires positive total", func(t *testing.T) {
		_, err := NewPlan(uuid.New(), uuid.New(), uuid.New(),
			valueobject.ZeroPKR(), valueobject.ZeroPKR(),
			[]InstallmentSpec{{DueDate: time.Now(), Amount: decimal.NewFromInt(1)}})
		assert.Error(t, err)
	})
}

func TestPayInstallment(t *testing.T) {
	t.Run("full payment marks paid", func(t *testing.T) {
		plan := createTestPlan(t)

		err := plan.PayInstallment(1, valueobject.NewMoneyPKRFromFloat(300000), time.Now())
		require.NoError(t, err)

		inst := plan.FindInstallment(1)
		assert.True(t, inst.Paid)
		assert.Equal(t, InstallmentStatusPaid, inst.Status)
		assert.Equal(t, "300000.00", plan.TotalPaid.Amount().StringFixed(2))
		assert.Equal(t, "700000.00", plan.RemainingAmount.Amount().StringFixed(2))
		require.NotNil(t, plan.NextDueDate)
		assert.Equal(t, plan.Installments[1].DueDate, *plan.NextDueDate)
	})

	t.Run("short payment marks partial but still paid", func(t *testing.T) {
		plan := createTestPlan(t)

		err := plan.PayInstallment(1, valueobject.NewMoneyPKRFromFloat(250000), time.Now())
		require.NoError(t, err)

		inst := plan.FindInstallment(1)
		assert.True(t, inst.Paid)
		assert.Equal(t, InstallmentStatusPartial, inst.Status)
		assert.Equal(t, "250000.00", plan.TotalPaid.Amount().StringFixed(2))
	})

	t.Run("unknown installment", func(t *testing.T) {
		plan := createTestPlan(t)

		err := plan.PayInstallment(99, valueobject.NewMoneyPKRFromFloat(1), time.Now())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("paying twice fails", func(t *testing.T) {
		plan := createTestPlan(t)
		require.NoError(t, plan.PayInstallment(1, valueobject.NewMoneyPKRFromFloat(300000), time.Now()))

		err := plan.PayInstallment(1, valueobject.NewMoneyPKRFromFloat(300000), time.Now())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_PAID", domainErr.Code)
	})

	t.Run("terminal plan rejects payments", func(t *testing.T) {
		plan := createTestPlan(t)
		require.NoError(t, plan.Cancel())

		err := plan.PayInstallment(1, valueobject.NewMoneyPKRFromFloat(300000), time.Now())
		assert.Error(t, err)
	})
}

func TestPayDownPayment(t *testing.T) {
	t.Run("down payment counted in totals", func(t *testing.T) {
		plan := createTestPlan(t)

		err := plan.PayDownPayment(valueobject.ZeroPKR(), time.Now())
		require.NoError(t, err)
		assert.True(t, plan.DownPaymentPaid)
		assert.Equal(t, "100000.00", plan.TotalPaid.Amount().StringFixed(2))
		assert.Equal(t, "900000.00", plan.RemainingAmount.Amount().StringFixed(2))
	})

	t.Run("paying twice fails", func(t *testing.T) {
		plan := createTestPlan(t)
		require.NoError(t, plan.PayDownPayment(valueobject.ZeroPKR(), time.Now()))

		err := plan.PayDownPayment(valueobject.ZeroPKR(), time.Now())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_PAID", domainErr.Code)
	})
}

func TestPlanCompletion(t *testing.T) {
	t.Run("completes when all installments and down payment paid", func(t *testing.T) {
		plan := createTestPlan(t)
		amt := valueobject.NewMoneyPKRFromFloat(300000)

		require.NoError(t, plan.PayDownPayment(valueobject.ZeroPKR(), time.Now()))
		require.NoError(t, plan.PayInstallment(1, amt, time.Now()))
		require.NoError(t, plan.PayInstallment(2, amt, time.Now()))
		assert.Equal(t, PlanStatusActive, plan.Status)

		require.NoError(t, plan.PayInstallment(3, amt, time.Now()))
		assert.Equal(t, PlanStatusCompleted, plan.Status)
		assert.Nil(t, plan.NextDueDate)
	})

	t.Run("stays active with unpaid down payment", func(t *testing.T) {
		plan := createTestPlan(t)
		amt := valueobject.NewMoneyPKRFromFloat(300000)

		require.NoError(t, plan.PayInstallment(1, amt, time.Now()))
		require.NoError(t, plan.PayInstallment(2, amt, time.Now()))
		require.NoError(t, plan.PayInstallment(3, amt, time.Now()))

		assert.Equal(t, PlanStatusActive, plan.Status)
	})
}

func TestDeriveStateInvariant(t *testing.T) {
	// Exercise a few reachable states and verify the derived invariant
	// holds in each: totalPaid matches the sum of paid amounts plus the
	// down payment, and remaining is total minus paid.
	plan := createTestPlan(t)
	now := time.Now()

	check := func() {
		state := DeriveState(plan, now)
		expected := decimal.Zero
		for _, inst := range plan.Installments {
			if inst.Paid {
				expected = expected.Add(inst.PaidAmount)
			}
		}
		if plan.DownPaymentPaid {
			expected = expected.Add(plan.DownPayment.Amount())
		}
		assert.True(t, state.TotalPaid.Amount().Equal(expected))
		assert.True(t, state.RemainingAmount.Amount().Equal(
			plan.TotalAmount.Amount().Sub(expected)))
	}

	check()
	require.NoError(t, plan.PayInstallment(2, valueobject.NewMoneyPKRFromFloat(150000), now))
	check()
	require.NoError(t, plan.PayDownPayment(valueobject.ZeroPKR(), now))
	check()
	require.NoError(t, plan.PayInstallment(1, valueobject.NewMoneyPKRFromFloat(300000), now))
	check()
}

func TestNextDueDateSkipsOverdue(t *testing.T) {
	// An unpaid installment already past due does not become the next due
	// date; the earliest future one does.
	past := time.Now().AddDate(0, 0, -10)
	future := time.Now().AddDate(0, 0, 20)
	plan, err := NewPlan(uuid.New(), uuid.New(), uuid.New(),
		valueobject.NewMoneyPKRFromFloat(600000), valueobject.ZeroPKR(),
		[]InstallmentSpec{
			{DueDate: past, Amount: decimal.NewFromInt(300000)},
			{DueDate: future, Amount: decimal.NewFromInt(300000)},
		})
	require.NoError(t, err)

	require.NotNil(t, plan.NextDueDate)
	assert.Equal(t, future, *plan.NextDueDate)
}
