package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/partner"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// PartnerModel is the persistence model for the Partner aggregate. Capital
// transactions and profit distributions live in JSONB columns alongside the
// running totals.
type PartnerModel struct {
	AggregateModel
	Name                string                      `gorm:"type:varchar(255);not null"`
	UserID              *uuid.UUID                  `gorm:"type:uuid;index"`
	SharePercent        decimal.Decimal             `gorm:"type:decimal(5,2);not null"`
	CapitalInjected     decimal.Decimal             `gorm:"type:decimal(20,4);not null;default:0"`
	Withdrawals         decimal.Decimal             `gorm:"type:decimal(20,4);not null;default:0"`
	CapitalTransactions partner.CapitalTransactions `gorm:"type:jsonb;default:'[]'"`
	ProfitCredited      decimal.Decimal             `gorm:"type:decimal(20,4);not null;default:0"`
	ProfitDistributions partner.ProfitDistributions `gorm:"type:jsonb;default:'[]'"`
	Status              partner.Status              `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "partners"
}

// ToDomain converts the persistence model to a domain Partner
func (m *PartnerModel) ToDomain() *partner.Partner {
	return &partner.Partner{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		Name:                m.Name,
		UserID:              m.UserID,
		SharePercent:        m.SharePercent,
		CapitalInjected:     valueobject.NewMoneyPKR(m.CapitalInjected),
		Withdrawals:         valueobject.NewMoneyPKR(m.Withdrawals),
		CapitalTransactions: m.CapitalTransactions,
		ProfitCredited:      valueobject.NewMoneyPKR(m.ProfitCredited),
		ProfitDistributions: m.ProfitDistributions,
		Status:              m.Status,
	}
}

// PartnerModelFromDomain builds a persistence model from a domain Partner
func PartnerModelFromDomain(p *partner.Partner) *PartnerModel {
	m := &PartnerModel{
		Name:                p.Name,
		UserID:              p.UserID,
		SharePercent:        p.SharePercent,
		CapitalInjected:     p.CapitalInjected.Amount(),
		Withdrawals:         p.Withdrawals.Amount(),
		CapitalTransactions: p.CapitalTransactions,
		ProfitCredited:      p.ProfitCredited.Amount(),
		ProfitDistributions: p.ProfitDistributions,
		Status:              p.Status,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
