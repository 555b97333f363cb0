package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate/backend/internal/domain/commission"
)

func TestInMemoryRuleCache(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()

	rule, err := commission.NewRule(nil, decimal.Zero, decimal.NewFromInt(10),
		commission.RuleTypePercent, decimal.NewFromInt(2), 1, time.Now())
	require.NoError(t, err)

	t.Run("hit after set", func(t *testing.T) {
		c := NewInMemoryRuleCache(time.Minute)
		require.NoError(t, c.Set(ctx, projectID, []*commission.Rule{rule}))

		got, found, err := c.Get(ctx, projectID)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, got, 1)
		assert.Equal(t, rule.ID, got[0].ID)
	})

	t.Run("miss on unknown project", func(t *testing.T) {
		c := NewInMemoryRuleCache(time.Minute)
		_, found, err := c.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		c := NewInMemoryRuleCache(-time.Second)
		require.NoError(t, c.Set(ctx, projectID, []*commission.Rule{rule}))

		_, found, err := c.Get(ctx, projectID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("invalidate drops entry", func(t *testing.T) {
		c := NewInMemoryRuleCache(time.Minute)
		require.NoError(t, c.Set(ctx, projectID, []*commission.Rule{rule}))
		require.NoError(t, c.Invalidate(ctx, projectID))

		_, found, err := c.Get(ctx, projectID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("invalidate all", func(t *testing.T) {
		c := NewInMemoryRuleCache(time.Minute)
		other := uuid.New()
		require.NoError(t, c.Set(ctx, projectID, []*commission.Rule{rule}))
		require.NoError(t, c.Set(ctx, other, []*commission.Rule{rule}))
		require.NoError(t, c.InvalidateAll(ctx))

		_, found, _ := c.Get(ctx, projectID)
		assert.False(t, found)
		_, found, _ = c.Get(ctx, other)
		assert.False(t, found)
	})
}
