package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estate/backend/internal/domain/commission"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
)

// GormCommissionRuleRepository implements commission.RuleRepository using GORM
type GormCommissionRuleRepository struct {
	db *gorm.DB
}

// NewGormCommissionRuleRepository creates a new GormCommissionRuleRepository
func NewGormCommissionRuleRepository(db *gorm.DB) *GormCommissionRuleRepository {
	return &GormCommissionRuleRepository{db: db}
}

// Save creates or updates a commission rule
func (r *GormCommissionRuleRepository) Save(ctx context.Context, rule *commission.Rule) error {
	model := models.CommissionRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a commission rule by its ID
func (r *GormCommissionRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.Rule, error) {
	var model models.CommissionRuleModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCandidates returns active rules scoped to the project plus the global
// rules. Effective-date and size filtering happens in the resolver, not here.
func (r *GormCommissionRuleRepository) FindCandidates(ctx context.Context, projectID uuid.UUID) ([]*commission.Rule, error) {
	var ruleModels []models.CommissionRuleModel
	if err := r.db.WithContext(ctx).
		Where("active = ? AND (project_id = ? OR project_id IS NULL)", true, projectID).
		Order("priority DESC, created_at ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	rules := make([]*commission.Rule, len(ruleModels))
	for i := range ruleModels {
		rules[i] = ruleModels[i].ToDomain()
	}
	return rules, nil
}

// List returns a paginated set of commission rules
func (r *GormCommissionRuleRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*commission.Rule], error) {
	query := r.db.WithContext(ctx).Model(&models.CommissionRuleModel{})
	return listPaginated(query, filter, func(m *models.CommissionRuleModel) *commission.Rule {
		return m.ToDomain()
	})
}

// Delete removes a commission rule
func (r *GormCommissionRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CommissionRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormCommissionRepository implements commission.Repository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// Save creates or updates a commission
func (r *GormCommissionRepository) Save(ctx context.Context, c *commission.Commission) error {
	model := models.CommissionModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormCommissionRepository) SaveWithLock(ctx context.Context, c *commission.Commission) error {
	model := models.CommissionModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// FindByID finds a commission by its ID
func (r *GormCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.Commission, error) {
	var model models.CommissionModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAgent returns every commission earned by an agent
func (r *GormCommissionRepository) FindByAgent(ctx context.Context, agentID uuid.UUID) ([]*commission.Commission, error) {
	var commissionModels []models.CommissionModel
	if err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	return toDomainCommissions(commissionModels), nil
}

// FindByPlot returns every commission tied to a plot
func (r *GormCommissionRepository) FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*commission.Commission, error) {
	var commissionModels []models.CommissionModel
	if err := r.db.WithContext(ctx).
		Where("plot_id = ?", plotID).
		Order("created_at DESC").
		Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	return toDomainCommissions(commissionModels), nil
}

// List returns a paginated set of commissions
func (r *GormCommissionRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*commission.Commission], error) {
	query := r.db.WithContext(ctx).Model(&models.CommissionModel{})
	return listPaginated(query, filter, func(m *models.CommissionModel) *commission.Commission {
		return m.ToDomain()
	})
}

// Delete removes a commission. Used by saga compensation before any payout
// has happened.
func (r *GormCommissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CommissionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainCommissions(commissionModels []models.CommissionModel) []*commission.Commission {
	commissions := make([]*commission.Commission, len(commissionModels))
	for i := range commissionModels {
		commissions[i] = commissionModels[i].ToDomain()
	}
	return commissions
}
