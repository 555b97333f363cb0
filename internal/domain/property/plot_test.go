package property

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

func createTestPlot(t *testing.T) *Plot {
	t.Helper()
	plot, err := NewPlot("PL-202", uuid.New(), decimal.NewFromInt(7))
	require.NoError(t, err)
	return plot
}

func TestNewPlot(t *testing.T) {
	plot := createTestPlot(t)
	assert.Equal(t, PlotAvailable, plot.Status)
	assert.Nil(t, plot.BuyerID)

	_, err := NewPlot("", uuid.New(), decimal.NewFromInt(5))
	assert.Error(t, err)

	_, err = NewPlot("PL-1", uuid.New(), decimal.Zero)
	assert.Error(t, err)
}

func TestMarkSold(t *testing.T) {
	price := valueobject.NewMoneyPKRFromFloat(2500000)

	t.Run("available plot sells", func(t *testing.T) {
		plot := createTestPlot(t)
		buyer := uuid.New()

		require.NoError(t, plot.MarkSold(buyer, price, time.Now()))
		assert.Equal(t, PlotSold, plot.Status)
		require.NotNil(t, plot.BuyerID)
		assert.Equal(t, buyer, *plot.BuyerID)
		assert.NotNil(t, plot.SoldAt)
		assert.NotNil(t, plot.SalePrice)
	})

	t.Run("reserved plot sells", func(t *testing.T) {
		plot := createTestPlot(t)
		require.NoError(t, plot.Reserve())
		assert.NoError(t, plot.MarkSold(uuid.New(), price, time.Now()))
	})

	t.Run("sold plot cannot sell again", func(t *testing.T) {
		plot := createTestPlot(t)
		require.NoError(t, plot.MarkSold(uuid.New(), price, time.Now()))

		err := plot.MarkSold(uuid.New(), price, time.Now())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("blocked and disputed plots cannot sell", func(t *testing.T) {
		blocked := createTestPlot(t)
		require.NoError(t, blocked.Block())
		assert.Error(t, blocked.MarkSold(uuid.New(), price, time.Now()))

		disputed := createTestPlot(t)
		require.NoError(t, disputed.MarkDisputed())
		assert.Error(t, disputed.MarkSold(uuid.New(), price, time.Now()))
	})
}

func TestRevertToAvailable(t *testing.T) {
	price := valueobject.NewMoneyPKRFromFloat(2500000)

	t.Run("sold plot reverts clean", func(t *testing.T) {
		plot := createTestPlot(t)
		require.NoError(t, plot.MarkSold(uuid.New(), price, time.Now()))

		require.NoError(t, plot.RevertToAvailable())
		assert.Equal(t, PlotAvailable, plot.Status)
		assert.Nil(t, plot.BuyerID)
		assert.Nil(t, plot.SalePrice)
		assert.Nil(t, plot.SoldAt)
	})

	t.Run("unsold plot cannot revert", func(t *testing.T) {
		plot := createTestPlot(t)
		assert.Error(t, plot.RevertToAvailable())
	})
}
