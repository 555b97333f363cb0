package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
)

// GormLedgerRepository implements ledger.Repository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Save creates or updates a ledger entry
func (r *GormLedgerRepository) Save(ctx context.Context, entry *ledger.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormLedgerRepository) SaveWithLock(ctx context.Context, entry *ledger.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", entry.ID, entry.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// FindByID finds a ledger entry by its ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount returns every entry posted against an account, ordered by
// (entry_date, id) ascending so balance folds stay deterministic.
func (r *GormLedgerRepository) FindByAccount(ctx context.Context, account ledger.Account) ([]*ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("account = ?", account).
		Order("entry_date ASC, id ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindByRef returns entries tied to a source record, ordered like
// FindByAccount
func (r *GormLedgerRepository) FindByRef(ctx context.Context, refID uuid.UUID, refType ledger.RefType) ([]*ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("ref_id = ? AND ref_type = ?", refID, refType).
		Order("entry_date ASC, id ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindUnreconciled returns unreconciled entries with an entry date inside
// the given window, the candidate set of a bank match run
func (r *GormLedgerRepository) FindUnreconciled(ctx context.Context, from, to time.Time) ([]*ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("reconciled = ? AND entry_date >= ? AND entry_date <= ?", false, from, to).
		Order("entry_date ASC, id ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindByDateRange returns entries with an entry date inside [from, to],
// ordered like FindByAccount. A zero bound leaves that side open.
func (r *GormLedgerRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*ledger.LedgerEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{})
	if !from.IsZero() {
		query = query.Where("entry_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("entry_date <= ?", to)
	}

	var entryModels []models.LedgerEntryModel
	if err := query.Order("entry_date ASC, id ASC").Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// List returns a paginated set of ledger entries
func (r *GormLedgerRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*ledger.LedgerEntry], error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{})
	return listPaginated(query, filter, func(m *models.LedgerEntryModel) *ledger.LedgerEntry {
		return m.ToDomain()
	})
}

// Delete removes a ledger entry. Only the sale saga calls this, to take
// back postings made before a later step failed.
func (r *GormLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LedgerEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainEntries(entryModels []models.LedgerEntryModel) []*ledger.LedgerEntry {
	entries := make([]*ledger.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries
}
