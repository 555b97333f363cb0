package property

import (
	"context"

	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
)

// PlotRepository defines the persistence contract for plots
type PlotRepository interface {
	Save(ctx context.Context, plot *Plot) error
	SaveWithLock(ctx context.Context, plot *Plot) error
	FindByID(ctx context.Context, id uuid.UUID) (*Plot, error)
	FindByProjectAndNo(ctx context.Context, projectID uuid.UUID, plotNo string) (*Plot, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Plot], error)
}

// SellerPaymentRepository defines the persistence contract for seller
// payments
type SellerPaymentRepository interface {
	Save(ctx context.Context, payment *SellerPayment) error
	SaveWithLock(ctx context.Context, payment *SellerPayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*SellerPayment, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID) ([]*SellerPayment, error)
	FindByPlot(ctx context.Context, plotID uuid.UUID) (*SellerPayment, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*SellerPayment], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
