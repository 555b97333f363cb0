package bank

import (
	"context"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
)

// Repository defines the persistence contract for bank accounts
type Repository interface {
	Save(ctx context.Context, account *Account) error
	SaveWithLock(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByAccountNo(ctx context.Context, accountNo string) (*Account, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Account], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
