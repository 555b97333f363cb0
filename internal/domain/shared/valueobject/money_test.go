package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), PKR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, PKR, m.Currency())
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyPKRFromFloat(1500.50)
	b := NewMoneyPKRFromFloat(499.50)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(2000)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromFloat(1001)))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)
		_, err = a.Add(usd)
		assert.Error(t, err)
		_, err = a.Subtract(usd)
		assert.Error(t, err)
	})
}

func TestMoneyPercentage(t *testing.T) {
	price := NewMoneyPKRFromFloat(2500000)

	commission := price.CalculatePercentage(decimal.NewFromFloat(2.5))
	assert.True(t, commission.Amount().Equal(decimal.NewFromInt(62500)))

	// Rounding to 2 decimal places for uneven percentages.
	odd := NewMoneyPKRFromFloat(1000.01).CalculatePercentage(decimal.NewFromFloat(3.33)).Round(2)
	assert.Equal(t, "33.30", odd.Amount().StringFixed(2))
}

func TestMoneyComparisons(t *testing.T) {
	small := NewMoneyPKRFromFloat(10)
	big := NewMoneyPKRFromFloat(20)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	gte, err := big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, ZeroPKR().IsZero())
	assert.True(t, big.IsPositive())
	assert.True(t, ZeroPKR().MustSubtract(small).IsNegative())
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyPKRFromFloat(1234.56)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"PKR"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("987.65"))
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(987.65)))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(42))
}
