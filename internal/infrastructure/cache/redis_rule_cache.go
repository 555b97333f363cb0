package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/estate/backend/internal/domain/commission"
)

const ruleKeyPrefix = "commission:rules:"

// RedisRuleCache implements RuleCache on Redis with JSON-encoded rule sets
type RedisRuleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRuleCache creates a Redis-backed rule cache
func NewRedisRuleCache(client *redis.Client, ttl time.Duration) *RedisRuleCache {
	return &RedisRuleCache{client: client, ttl: ttl}
}

func ruleKey(projectID uuid.UUID) string {
	return ruleKeyPrefix + projectID.String()
}

// Get implements RuleCache
func (c *RedisRuleCache) Get(ctx context.Context, projectID uuid.UUID) ([]*commission.Rule, bool, error) {
	data, err := c.client.Get(ctx, ruleKey(projectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read rule cache: %w", err)
	}

	var rules []*commission.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return rules, true, nil
}

// Set implements RuleCache
func (c *RedisRuleCache) Set(ctx context.Context, projectID uuid.UUID, rules []*commission.Rule) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	if err := c.client.Set(ctx, ruleKey(projectID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rule cache: %w", err)
	}
	return nil
}

// Invalidate implements RuleCache
func (c *RedisRuleCache) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	if err := c.client.Del(ctx, ruleKey(projectID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rule cache: %w", err)
	}
	return nil
}

// InvalidateAll implements RuleCache
func (c *RedisRuleCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, ruleKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate rule cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan rule cache keys: %w", err)
	}
	return nil
}

var _ RuleCache = (*RedisRuleCache)(nil)
