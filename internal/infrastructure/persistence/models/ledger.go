package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/ledger"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// LedgerEntryModel is the persistence model for the LedgerEntry aggregate
type LedgerEntryModel struct {
	AggregateModel
	Type         ledger.EntryType `gorm:"type:varchar(10);not null;index"`
	Account      ledger.Account   `gorm:"type:varchar(30);not null;index"`
	Category     ledger.Category  `gorm:"type:varchar(30);not null;index"`
	Amount       decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	Description  string           `gorm:"type:text"`
	RefID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_ledger_ref,priority:1"`
	RefType      ledger.RefType   `gorm:"type:varchar(30);not null;index:idx_ledger_ref,priority:2"`
	EntryDate    time.Time        `gorm:"not null;index"`
	ProjectID    *uuid.UUID       `gorm:"type:uuid;index"`
	UserID       *uuid.UUID       `gorm:"type:uuid;index"`
	Reconciled   bool             `gorm:"not null;default:false;index"`
	ReconciledAt *time.Time
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	return &ledger.LedgerEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Type:              m.Type,
		Account:           m.Account,
		Category:          m.Category,
		Amount:            valueobject.NewMoneyPKR(m.Amount),
		Description:       m.Description,
		RefID:             m.RefID,
		RefType:           m.RefType,
		EntryDate:         m.EntryDate,
		ProjectID:         m.ProjectID,
		UserID:            m.UserID,
		Reconciled:        m.Reconciled,
		ReconciledAt:      m.ReconciledAt,
	}
}

// LedgerEntryModelFromDomain builds a persistence model from a domain
// LedgerEntry
func LedgerEntryModelFromDomain(e *ledger.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{
		Type:         e.Type,
		Account:      e.Account,
		Category:     e.Category,
		Amount:       e.Amount.Amount(),
		Description:  e.Description,
		RefID:        e.RefID,
		RefType:      e.RefType,
		EntryDate:    e.EntryDate,
		ProjectID:    e.ProjectID,
		UserID:       e.UserID,
		Reconciled:   e.Reconciled,
		ReconciledAt: e.ReconciledAt,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}
