package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estate/backend/internal/domain/property"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
)

// GormPlotRepository implements property.PlotRepository using GORM
type GormPlotRepository struct {
	db *gorm.DB
}

// NewGormPlotRepository creates a new GormPlotRepository
func NewGormPlotRepository(db *gorm.DB) *GormPlotRepository {
	return &GormPlotRepository{db: db}
}

// Save creates or updates a plot
func (r *GormPlotRepository) Save(ctx context.Context, plot *property.Plot) error {
	model := models.PlotModelFromDomain(plot)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. Plot status transitions race
// under concurrent sales of the same plot; the version check makes the
// loser fail instead of double-selling.
func (r *GormPlotRepository) SaveWithLock(ctx context.Context, plot *property.Plot) error {
	model := models.PlotModelFromDomain(plot)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", plot.ID, plot.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// FindByID finds a plot by its ID
func (r *GormPlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Plot, error) {
	var model models.PlotModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProjectAndNo finds a plot by its number inside a project
func (r *GormPlotRepository) FindByProjectAndNo(ctx context.Context, projectID uuid.UUID, plotNo string) (*property.Plot, error) {
	var model models.PlotModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND plot_no = ?", projectID, plotNo).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a paginated set of plots
func (r *GormPlotRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*property.Plot], error) {
	query := r.db.WithContext(ctx).Model(&models.PlotModel{})
	return listPaginated(query, filter, func(m *models.PlotModel) *property.Plot {
		return m.ToDomain()
	})
}

// GormSellerPaymentRepository implements property.SellerPaymentRepository
// using GORM
type GormSellerPaymentRepository struct {
	db *gorm.DB
}

// NewGormSellerPaymentRepository creates a new GormSellerPaymentRepository
func NewGormSellerPaymentRepository(db *gorm.DB) *GormSellerPaymentRepository {
	return &GormSellerPaymentRepository{db: db}
}

// Save creates or updates a seller payment
func (r *GormSellerPaymentRepository) Save(ctx context.Context, payment *property.SellerPayment) error {
	model := models.SellerPaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormSellerPaymentRepository) SaveWithLock(ctx context.Context, payment *property.SellerPayment) error {
	model := models.SellerPaymentModelFromDomain(payment)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// FindByID finds a seller payment by its ID
func (r *GormSellerPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.SellerPayment, error) {
	var model models.SellerPaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySeller returns every payment owed to a seller
func (r *GormSellerPaymentRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) ([]*property.SellerPayment, error) {
	var paymentModels []models.SellerPaymentModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]*property.SellerPayment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments, nil
}

// FindByPlot returns the seller payment for a plot. A plot sale creates at
// most one.
func (r *GormSellerPaymentRepository) FindByPlot(ctx context.Context, plotID uuid.UUID) (*property.SellerPayment, error) {
	var model models.SellerPaymentModel
	if err := r.db.WithContext(ctx).
		Where("plot_id = ?", plotID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a paginated set of seller payments
func (r *GormSellerPaymentRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*property.SellerPayment], error) {
	query := r.db.WithContext(ctx).Model(&models.SellerPaymentModel{})
	return listPaginated(query, filter, func(m *models.SellerPaymentModel) *property.SellerPayment {
		return m.ToDomain()
	})
}

// Delete removes a seller payment. Used by saga compensation before any
// payout has happened.
func (r *GormSellerPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SellerPaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
