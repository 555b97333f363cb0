package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/commission"
)

// RuleCache caches the candidate commission rule set per project so the
// sale path does not hit the database on every resolution. Entries expire
// on TTL and are invalidated on rule writes.
type RuleCache interface {
	// Get returns the cached candidate rules for the project,
	// with found=false on a miss.
	Get(ctx context.Context, projectID uuid.UUID) (rules []*commission.Rule, found bool, err error)
	// Set stores the candidate rules for the project
	Set(ctx context.Context, projectID uuid.UUID, rules []*commission.Rule) error
	// Invalidate drops the cached rules for the project
	Invalidate(ctx context.Context, projectID uuid.UUID) error
	// InvalidateAll drops every cached rule set, used when a global rule
	// changes.
	InvalidateAll(ctx context.Context) error
}
