package partner

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

func createTestPartner(t *testing.T, sharePercent float64) *Partner {
	t.Helper()
	p, err := NewPartner("Ahmed Raza", decimal.NewFromFloat(sharePercent))
	require.NoError(t, err)
	return p
}

func TestNewPartner(t *testing.T) {
	t.Run("valid partner", func(t *testing.T) {
		p := createTestPartner(t, 25)
		assert.Equal(t, StatusActive, p.Status)
		assert.True(t, p.CapitalInjected.IsZero())
		assert.True(t, p.ProfitCredited.IsZero())
	})

	t.Run("share above 100 rejected", func(t *testing.T) {
		_, err := NewPartner("X", decimal.NewFromInt(101))
		assert.Error(t, err)
	})

	t.Run("name required", func(t *testing.T) {
		_, err := NewPartner("", decimal.NewFromInt(10))
		assert.Error(t, err)
	})
}

func TestAddCapital(t *testing.T) {
	t.Run("injection increases balance", func(t *testing.T) {
		p := createTestPartner(t, 25)

		tx, err := p.AddCapital(valueobject.NewMoneyPKRFromFloat(500000), CapitalInjection, time.Now(), "")
		require.NoError(t, err)
		assert.Equal(t, CapitalInjection, tx.Type)
		assert.Equal(t, "500000.00", p.CapitalBalance().Amount().StringFixed(2))
		assert.Len(t, p.CapitalTransactions, 1)
	})

	t.Run("withdrawal within balance", func(t *testing.T) {
		p := createTestPartner(t, 25)
		_, err := p.AddCapital(valueobject.NewMoneyPKRFromFloat(500000), CapitalInjection, time.Now(), "")
		require.NoError(t, err)

		_, err = p.AddCapital(valueobject.NewMoneyPKRFromFloat(200000), CapitalWithdrawal, time.Now(), "")
		require.NoError(t, err)
		assert.Equal(t, "300000.00", p.CapitalBalance().Amount().StringFixed(2))
	})

	t.Run("withdrawal beyond balance fails", func(t *testing.T) {
		p := createTestPartner(t, 25)
		_, err := p.AddCapital(valueobject.NewMoneyPKRFromFloat(100000), CapitalInjection, time.Now(), "")
		require.NoError(t, err)

		_, err = p.AddCapital(valueobject.NewMoneyPKRFromFloat(100001), CapitalWithdrawal, time.Now(), "")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_CAPITAL", domainErr.Code)
	})

	t.Run("withdrawal of exact balance allowed", func(t *testing.T) {
		p := createTestPartner(t, 25)
		_, err := p.AddCapital(valueobject.NewMoneyPKRFromFloat(100000), CapitalInjection, time.Now(), "")
		require.NoError(t, err)

		_, err = p.AddCapital(valueobject.NewMoneyPKRFromFloat(100000), CapitalWithdrawal, time.Now(), "")
		require.NoError(t, err)
		assert.True(t, p.CapitalBalance().IsZero())
	})

	t.Run("terminated partner rejected", func(t *testing.T) {
		p := createTestPartner(t, 25)
		require.NoError(t, p.Terminate())

		_, err := p.AddCapital(valueobject.NewMoneyPKRFromFloat(100), CapitalInjection, time.Now(), "")
		assert.Error(t, err)
	})
}

func TestDistributeProfit(t *testing.T) {
	t.Run("share of total credited as pending", func(t *testing.T) {
		p := createTestPartner(t, 25)

		dist, err := p.DistributeProfit(valueobject.NewMoneyPKRFromFloat(1000000), nil, "2024-Q2")
		require.NoError(t, err)
		assert.Equal(t, DistributionPending, dist.Status)
		assert.True(t, dist.Amount.Equal(decimal.NewFromInt(250000)))
		assert.Equal(t, "250000.00", p.ProfitCredited.Amount().StringFixed(2))
	})

	t.Run("inactive partner rejected", func(t *testing.T) {
		p := createTestPartner(t, 25)
		require.NoError(t, p.Deactivate())

		_, err := p.DistributeProfit(valueobject.NewMoneyPKRFromFloat(1000), nil, "2024-Q2")
		assert.Error(t, err)
	})
}

func TestApproveDistribution(t *testing.T) {
	t.Run("pending to paid increments withdrawals", func(t *testing.T) {
		p := createTestPartner(t, 25)
		dist, err := p.DistributeProfit(valueobject.NewMoneyPKRFromFloat(1000000), nil, "2024-Q2")
		require.NoError(t, err)

		require.NoError(t, p.ApproveDistribution(dist.ID, time.Now()))

		stored := p.FindDistribution(dist.ID)
		assert.Equal(t, DistributionPaid, stored.Status)
		assert.NotNil(t, stored.PaidDate)
		assert.Equal(t, "250000.00", p.Withdrawals.Amount().StringFixed(2))
	})

	t.Run("cannot pay twice", func(t *testing.T) {
		p := createTestPartner(t, 25)
		dist, err := p.DistributeProfit(valueobject.NewMoneyPKRFromFloat(1000000), nil, "2024-Q2")
		require.NoError(t, err)
		require.NoError(t, p.ApproveDistribution(dist.ID, time.Now()))

		err = p.ApproveDistribution(dist.ID, time.Now())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("unknown distribution", func(t *testing.T) {
		p := createTestPartner(t, 25)
		err := p.ApproveDistribution(uuid.New(), time.Now())
		assert.Error(t, err)
	})
}

func TestPartnerLifecycle(t *testing.T) {
	p := createTestPartner(t, 25)

	require.NoError(t, p.Deactivate())
	assert.Equal(t, StatusInactive, p.Status)

	require.NoError(t, p.Reactivate())
	assert.Equal(t, StatusActive, p.Status)

	require.NoError(t, p.Terminate())
	assert.Equal(t, StatusTerminated, p.Status)
	assert.Error(t, p.Terminate())
	assert.Error(t, p.UpdateShare(decimal.NewFromInt(5)))
}
