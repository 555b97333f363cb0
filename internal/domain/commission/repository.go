package commission

import (
	"context"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
)

// RuleRepository defines the persistence contract for commission rules
type RuleRepository interface {
	Save(ctx context.Context, rule *Rule) error
	FindByID(ctx context.Context, id uuid.UUID) (*Rule, error)
	// FindCandidates returns active rules scoped to the project plus the
	// global rules, the raw input of a resolution.
	FindCandidates(ctx context.Context, projectID uuid.UUID) ([]*Rule, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Rule], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository defines the persistence contract for commissions
type Repository interface {
	Save(ctx context.Context, commission *Commission) error
	SaveWithLock(ctx context.Context, commission *Commission) error
	FindByID(ctx context.Context, id uuid.UUID) (*Commission, error)
	FindByAgent(ctx context.Context, agentID uuid.UUID) ([]*Commission, error)
	FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*Commission, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Commission], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
