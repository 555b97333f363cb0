package installment

import (
	"context"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
)

// Repository defines the persistence contract for installment plans
type Repository interface {
	Save(ctx context.Context, plan *Plan) error
	SaveWithLock(ctx context.Context, plan *Plan) error
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Plan, error)
	FindByPlot(ctx context.Context, plotID uuid.UUID) (*Plan, error)
	FindActive(ctx context.Context) ([]*Plan, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Plan], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
