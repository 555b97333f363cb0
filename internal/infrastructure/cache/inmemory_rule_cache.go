package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/commission"
)

type cachedRules struct {
	rules     []*commission.Rule
	expiresAt time.Time
}

// InMemoryRuleCache implements RuleCache with a process-local map.
// Used in development and tests where Redis is not available.
type InMemoryRuleCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cachedRules
	ttl     time.Duration
}

// NewInMemoryRuleCache creates an in-memory rule cache
func NewInMemoryRuleCache(ttl time.Duration) *InMemoryRuleCache {
	return &InMemoryRuleCache{
		entries: make(map[uuid.UUID]cachedRules),
		ttl:     ttl,
	}
}

// Get implements RuleCache
func (c *InMemoryRuleCache) Get(_ context.Context, projectID uuid.UUID) ([]*commission.Rule, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[projectID]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.rules, true, nil
}

// Set implements RuleCache
func (c *InMemoryRuleCache) Set(_ context.Context, projectID uuid.UUID, rules []*commission.Rule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[projectID] = cachedRules{rules: rules, expiresAt: time.Now().Add(c.ttl)}
	return nil
}

// Invalidate implements RuleCache
func (c *InMemoryRuleCache) Invalidate(_ context.Context, projectID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, projectID)
	return nil
}

// InvalidateAll implements RuleCache
func (c *InMemoryRuleCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uuid.UUID]cachedRules)
	return nil
}

var _ RuleCache = (*InMemoryRuleCache)(nil)
