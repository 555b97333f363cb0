package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estate/backend/internal/domain/partner"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
)

// GormPartnerRepository implements partner.Repository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// Save creates or updates a partner
func (r *GormPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	model := models.PartnerModelFromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPartnerRepository) SaveWithLock(ctx context.Context, p *partner.Partner) error {
	model := models.PartnerModelFromDomain(p)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// FindByID finds a partner by its ID
func (r *GormPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	var model models.PartnerModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every partner regardless of status
func (r *GormPartnerRepository) FindAll(ctx context.Context) ([]*partner.Partner, error) {
	var partnerModels []models.PartnerModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&partnerModels).Error; err != nil {
		return nil, err
	}
	return toDomainPartners(partnerModels), nil
}

// FindActive returns every active partner
func (r *GormPartnerRepository) FindActive(ctx context.Context) ([]*partner.Partner, error) {
	var partnerModels []models.PartnerModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", partner.StatusActive).
		Order("created_at ASC").
		Find(&partnerModels).Error; err != nil {
		return nil, err
	}
	return toDomainPartners(partnerModels), nil
}

// List returns a paginated set of partners
func (r *GormPartnerRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*partner.Partner], error) {
	query := r.db.WithContext(ctx).Model(&models.PartnerModel{})
	return listPaginated(query, filter, func(m *models.PartnerModel) *partner.Partner {
		return m.ToDomain()
	})
}

// Delete removes a partner
func (r *GormPartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PartnerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainPartners(partnerModels []models.PartnerModel) []*partner.Partner {
	partners := make([]*partner.Partner, len(partnerModels))
	for i := range partnerModels {
		partners[i] = partnerModels[i].ToDomain()
	}
	return partners
}
