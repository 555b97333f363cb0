package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/property"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// PlotModel is the persistence model for the Plot aggregate
type PlotModel struct {
	AggregateModel
	PlotNo    string              `gorm:"type:varchar(50);not null;index:idx_plots_project_no,priority:2"`
	ProjectID uuid.UUID           `gorm:"type:uuid;not null;index:idx_plots_project_no,priority:1"`
	SizeMarla decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	Status    property.PlotStatus `gorm:"type:varchar(20);not null;index"`
	SellerID  *uuid.UUID          `gorm:"type:uuid;index"`
	BookedBy  *uuid.UUID          `gorm:"type:uuid;index"`
	BuyerID   *uuid.UUID          `gorm:"type:uuid;index"`
	SalePrice *decimal.Decimal    `gorm:"type:decimal(20,4)"`
	SoldAt    *time.Time
}

// TableName returns the table name for GORM
func (PlotModel) TableName() string {
	return "plots"
}

// ToDomain converts the persistence model to a domain Plot
func (m *PlotModel) ToDomain() *property.Plot {
	var salePrice *valueobject.Money
	if m.SalePrice != nil {
		p := valueobject.NewMoneyPKR(*m.SalePrice)
		salePrice = &p
	}
	return &property.Plot{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PlotNo:            m.PlotNo,
		ProjectID:         m.ProjectID,
		SizeMarla:         m.SizeMarla,
		Status:            m.Status,
		SellerID:          m.SellerID,
		BookedBy:          m.BookedBy,
		BuyerID:           m.BuyerID,
		SalePrice:         salePrice,
		SoldAt:            m.SoldAt,
	}
}

// PlotModelFromDomain builds a persistence model from a domain Plot
func PlotModelFromDomain(p *property.Plot) *PlotModel {
	var salePrice *decimal.Decimal
	if p.SalePrice != nil {
		a := p.SalePrice.Amount()
		salePrice = &a
	}
	m := &PlotModel{
		PlotNo:    p.PlotNo,
		ProjectID: p.ProjectID,
		SizeMarla: p.SizeMarla,
		Status:    p.Status,
		SellerID:  p.SellerID,
		BookedBy:  p.BookedBy,
		BuyerID:   p.BuyerID,
		SalePrice: salePrice,
		SoldAt:    p.SoldAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// SellerPaymentModel is the persistence model for the SellerPayment aggregate
type SellerPaymentModel struct {
	AggregateModel
	SellerID   uuid.UUID                    `gorm:"type:uuid;not null;index"`
	PlotID     uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal              `gorm:"type:decimal(20,4);not null"`
	PaidAmount decimal.Decimal              `gorm:"type:decimal(20,4);not null;default:0"`
	Status     property.SellerPaymentStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (SellerPaymentModel) TableName() string {
	return "seller_payments"
}

// ToDomain converts the persistence model to a domain SellerPayment
func (m *SellerPaymentModel) ToDomain() *property.SellerPayment {
	return &property.SellerPayment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SellerID:          m.SellerID,
		PlotID:            m.PlotID,
		Amount:            valueobject.NewMoneyPKR(m.Amount),
		PaidAmount:        valueobject.NewMoneyPKR(m.PaidAmount),
		Status:            m.Status,
	}
}

// SellerPaymentModelFromDomain builds a persistence model from a domain
// SellerPayment
func SellerPaymentModelFromDomain(p *property.SellerPayment) *SellerPaymentModel {
	m := &SellerPaymentModel{
		SellerID:   p.SellerID,
		PlotID:     p.PlotID,
		Amount:     p.Amount.Amount(),
		PaidAmount: p.PaidAmount.Amount(),
		Status:     p.Status,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
