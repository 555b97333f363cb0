package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
)

// Repository defines the persistence contract for partners
type Repository interface {
	Save(ctx context.Context, partner *Partner) error
	SaveWithLock(ctx context.Context, partner *Partner) error
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	// FindAll returns every partner regardless of status, the input of a
	// share invariant check.
	FindAll(ctx context.Context) ([]*Partner, error)
	FindActive(ctx context.Context) ([]*Partner, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Partner], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
