package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/installment"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// InstallmentPlanModel is the persistence model for the installment Plan
// aggregate. The schedule is stored as a single JSONB column; individual
// installments are never rows of their own.
type InstallmentPlanModel struct {
	AggregateModel
	BuyerID             uuid.UUID                `gorm:"type:uuid;not null;index"`
	PlotID              uuid.UUID                `gorm:"type:uuid;not null;index"`
	ProjectID           uuid.UUID                `gorm:"type:uuid;not null;index"`
	TotalAmount         decimal.Decimal          `gorm:"type:decimal(20,4);not null"`
	DownPayment         decimal.Decimal          `gorm:"type:decimal(20,4);not null"`
	DownPaymentPaid     bool                     `gorm:"not null;default:false"`
	DownPaymentPaidDate *time.Time
	Installments        installment.Installments `gorm:"type:jsonb;default:'[]'"`
	Status              installment.PlanStatus   `gorm:"type:varchar(20);not null;index"`
	TotalPaid           decimal.Decimal          `gorm:"type:decimal(20,4);not null;default:0"`
	RemainingAmount     decimal.Decimal          `gorm:"type:decimal(20,4);not null;default:0"`
	NextDueDate         *time.Time               `gorm:"index"`
}

// TableName returns the table name for GORM
func (InstallmentPlanModel) TableName() string {
	return "installment_plans"
}

// ToDomain converts the persistence model to a domain Plan
func (m *InstallmentPlanModel) ToDomain() *installment.Plan {
	return &installment.Plan{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		BuyerID:             m.BuyerID,
		PlotID:              m.PlotID,
		ProjectID:           m.ProjectID,
		TotalAmount:         valueobject.NewMoneyPKR(m.TotalAmount),
		DownPayment:         valueobject.NewMoneyPKR(m.DownPayment),
		DownPaymentPaid:     m.DownPaymentPaid,
		DownPaymentPaidDate: m.DownPaymentPaidDate,
		Installments:        m.Installments,
		Status:              m.Status,
		TotalPaid:           valueobject.NewMoneyPKR(m.TotalPaid),
		RemainingAmount:     valueobject.NewMoneyPKR(m.RemainingAmount),
		NextDueDate:         m.NextDueDate,
	}
}

// InstallmentPlanModelFromDomain builds a persistence model from a domain Plan
func InstallmentPlanModelFromDomain(p *installment.Plan) *InstallmentPlanModel {
	m := &InstallmentPlanModel{
		BuyerID:             p.BuyerID,
		PlotID:              p.PlotID,
		ProjectID:           p.ProjectID,
		TotalAmount:         p.TotalAmount.Amount(),
		DownPayment:         p.DownPayment.Amount(),
		DownPaymentPaid:     p.DownPaymentPaid,
		DownPaymentPaidDate: p.DownPaymentPaidDate,
		Installments:        p.Installments,
		Status:              p.Status,
		TotalPaid:           p.TotalPaid.Amount(),
		RemainingAmount:     p.RemainingAmount.Amount(),
		NextDueDate:         p.NextDueDate,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
