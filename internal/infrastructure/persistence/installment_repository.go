package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estate/backend/internal/domain/installment"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
)

// GormInstallmentRepository implements installment.Repository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// Save creates or updates an installment plan
func (r *GormInstallmentRepository) Save(ctx context.Context, plan *installment.Plan) error {
	model := models.InstallmentPlanModelFromDomain(plan)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormInstallmentRepository) SaveWithLock(ctx context.Context, plan *installment.Plan) error {
	model := models.InstallmentPlanModelFromDomain(plan)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", plan.ID, plan.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// FindByID finds an installment plan by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*installment.Plan, error) {
	var model models.InstallmentPlanModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuyer returns every plan held by a buyer
func (r *GormInstallmentRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*installment.Plan, error) {
	var planModels []models.InstallmentPlanModel
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}
	return toDomainPlans(planModels), nil
}

// FindByPlot returns the plan attached to a plot. A plot carries at most
// one plan.
func (r *GormInstallmentRepository) FindByPlot(ctx context.Context, plotID uuid.UUID) (*installment.Plan, error) {
	var model models.InstallmentPlanModel
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

// FindActive returns every active plan, the input of an aging report
func (r *GormInstallmentRepository) FindActive(ctx context.Context) ([]*installment.Plan, error) {
	var planModels []models.InstallmentPlanModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", installment.PlanStatusActive).
		Order("created_at ASC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}
	return toDomainPlans(planModels), nil
}

// List returns a paginated set of installment plans
func (r *GormInstallmentRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*installment.Plan], error) {
	query := r.db.WithContext(ctx).Model(&models.InstallmentPlanModel{})
	return listPaginated(query, filter, func(m *models.InstallmentPlanModel) *installment.Plan {
		return m.ToDomain()
	})
}

// Delete removes an installment plan. Used by saga compensation before any
// payment has been taken.
func (r *GormInstallmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InstallmentPlanModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainPlans(planModels []models.InstallmentPlanModel) []*installment.Plan {
	plans := make([]*installment.Plan, len(planModels))
	for i := range planModels {
		plans[i] = planModels[i].ToDomain()
	}
	return plans
}
