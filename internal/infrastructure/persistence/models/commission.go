package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/commission"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// CommissionRuleModel is the persistence model for a commission rule
type CommissionRuleModel struct {
	AggregateModel
	ProjectID     *uuid.UUID          `gorm:"type:uuid;index"`
	MinSizeMarla  decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	MaxSizeMarla  decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	Type          commission.RuleType `gorm:"type:varchar(10);not null"`
	Value         decimal.Decimal     `gorm:"type:decimal(20,4);not null"`
	Active        bool                `gorm:"not null;default:true;index"`
	Priority      int                 `gorm:"not null;default:0"`
	EffectiveFrom time.Time           `gorm:"not null"`
	EffectiveTo   *time.Time
}

// TableName returns the table name for GORM
func (CommissionRuleModel) TableName() string {
	return "commission_rules"
}

// ToDomain converts the persistence model to a domain Rule
func (m *CommissionRuleModel) ToDomain() *commission.Rule {
	return &commission.Rule{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProjectID:         m.ProjectID,
		MinSizeMarla:      m.MinSizeMarla,
		MaxSizeMarla:      m.MaxSizeMarla,
		Type:              m.Type,
		Value:             m.Value,
		Active:            m.Active,
		Priority:          m.Priority,
		EffectiveFrom:     m.EffectiveFrom,
		EffectiveTo:       m.EffectiveTo,
	}
}

// CommissionRuleModelFromDomain builds a persistence model from a domain Rule
func CommissionRuleModelFromDomain(r *commission.Rule) *CommissionRuleModel {
	m := &CommissionRuleModel{
		ProjectID:     r.ProjectID,
		MinSizeMarla:  r.MinSizeMarla,
		MaxSizeMarla:  r.MaxSizeMarla,
		Type:          r.Type,
		Value:         r.Value,
		Active:        r.Active,
		Priority:      r.Priority,
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// CommissionModel is the persistence model for the Commission aggregate
type CommissionModel struct {
	AggregateModel
	AgentID          uuid.UUID         `gorm:"type:uuid;not null;index"`
	PlotID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProjectID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal   `gorm:"type:decimal(20,4);not null"`
	CalculatedAmount decimal.Decimal   `gorm:"type:decimal(20,4);not null"`
	RuleID           *uuid.UUID        `gorm:"type:uuid"`
	Status           commission.Status `gorm:"type:varchar(20);not null;index"`
	ApprovedBy       *uuid.UUID        `gorm:"type:uuid"`
	ApprovedAt       *time.Time
	PaymentDate      *time.Time
	Notes            string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToDomain converts the persistence model to a domain Commission
func (m *CommissionModel) ToDomain() *commission.Commission {
	return &commission.Commission{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		AgentID:           m.AgentID,
		PlotID:            m.PlotID,
		ProjectID:         m.ProjectID,
		Amount:            valueobject.NewMoneyPKR(m.Amount),
		CalculatedAmount:  valueobject.NewMoneyPKR(m.CalculatedAmount),
		RuleID:            m.RuleID,
		Status:            m.Status,
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		PaymentDate:       m.PaymentDate,
		Notes:             m.Notes,
	}
}

// CommissionModelFromDomain builds a persistence model from a domain Commission
func CommissionModelFromDomain(c *commission.Commission) *CommissionModel {
	m := &CommissionModel{
		AgentID:          c.AgentID,
		PlotID:           c.PlotID,
		ProjectID:        c.ProjectID,
		Amount:           c.Amount.Amount(),
		CalculatedAmount: c.CalculatedAmount.Amount(),
		RuleID:           c.RuleID,
		Status:           c.Status,
		ApprovedBy:       c.ApprovedBy,
		ApprovedAt:       c.ApprovedAt,
		PaymentDate:      c.PaymentDate,
		Notes:            c.Notes,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
