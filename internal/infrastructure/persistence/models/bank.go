package models

import (
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/bank"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// BankAccountModel is the persistence model for the bank Account aggregate.
// Imported statement transactions are embedded in a JSONB column.
type BankAccountModel struct {
	AggregateModel
	AccountNo    string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	BankName     string               `gorm:"type:varchar(255);not null"`
	Title        string               `gorm:"type:varchar(255)"`
	Currency     valueobject.Currency `gorm:"type:varchar(3);not null"`
	Balance      decimal.Decimal      `gorm:"type:decimal(20,4);not null;default:0"`
	Transactions bank.Transactions    `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *BankAccountModel) ToDomain() *bank.Account {
	currency := m.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &bank.Account{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		AccountNo:         m.AccountNo,
		BankName:          m.BankName,
		Title:             m.Title,
		Currency:          currency,
		Balance:           valueobject.MustNewMoney(m.Balance, currency),
		Transactions:      m.Transactions,
	}
}

// BankAccountModelFromDomain builds a persistence model from a domain Account
func BankAccountModelFromDomain(a *bank.Account) *BankAccountModel {
	m := &BankAccountModel{
		AccountNo:    a.AccountNo,
		BankName:     a.BankName,
		Title:        a.Title,
		Currency:     a.Currency,
		Balance:      a.Balance.Amount(),
		Transactions: a.Transactions,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}
