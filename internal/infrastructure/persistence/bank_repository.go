package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estate/backend/internal/domain/bank"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
)

// GormBankRepository implements bank.Repository using GORM
type GormBankRepository struct {
	db *gorm.DB
}

// NewGormBankRepository creates a new GormBankRepository
func NewGormBankRepository(db *gorm.DB) *GormBankRepository {
	return &GormBankRepository{db: db}
}

// Save creates or updates a bank account
func (r *GormBankRepository) Save(ctx context.Context, account *bank.Account) error {
	model := models.BankAccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. Statement imports and match
// marking both go through here, concurrent imports of the same account must
// not interleave silently.
func (r *GormBankRepository) SaveWithLock(ctx context.Context, account *bank.Account) error {
	model := models.BankAccountModelFromDomain(account)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// FindByID finds a bank account by its ID
func (r *GormBankRepository) FindByID(ctx context.Context, id uuid.UUID) (*bank.Account, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccountNo finds a bank account by its account number
func (r *GormBankRepository) FindByAccountNo(ctx context.Context, accountNo string) (*bank.Account, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).
		Where("account_no = ?", accountNo).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a paginated set of bank accounts
func (r *GormBankRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*bank.Account], error) {
	query := r.db.WithContext(ctx).Model(&models.BankAccountModel{})
	return listPaginated(query, filter, func(m *models.BankAccountModel) *bank.Account {
		return m.ToDomain()
	})
}

// Delete removes a bank account
func (r *GormBankRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BankAccountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
