package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// PlotStatus represents the sale state of a plot
type PlotStatus string

const (
	PlotAvailable PlotStatus = "available"
	PlotReserved  PlotStatus = "reserved"
	PlotSold      PlotStatus = "sold"
	PlotBlocked   PlotStatus = "blocked"
	PlotDisputed  PlotStatus = "disputed"
)

// IsValid checks if the plot status is valid
func (s PlotStatus) IsValid() bool {
	switch s {
	case PlotAvailable, PlotReserved, PlotSold, PlotBlocked, PlotDisputed:
		return true
	}
	return false
}

// IsSellable reports whether a sale may start from this status
func (s PlotStatus) IsSellable() bool {
	return s == PlotAvailable || s == PlotReserved
}

// Plot is a sellable unit of land inside a project. The wider inventory
// lives elsewhere; the sale workflow only reads a plot and flips its sale
// fields.
type Plot struct {
	shared.BaseAggregateRoot
	PlotNo    string             `json:"plot_no"`
	ProjectID uuid.UUID          `json:"project_id"`
	SizeMarla decimal.Decimal    `json:"size_marla"`
	Status    PlotStatus         `json:"status"`
	SellerID  *uuid.UUID         `json:"seller_id,omitempty"`
	BookedBy  *uuid.UUID         `json:"booked_by,omitempty"` // booking agent, earns commission on sale
	BuyerID   *uuid.UUID         `json:"buyer_id,omitempty"`
	SalePrice *valueobject.Money `json:"sale_price,omitempty"`
	SoldAt    *time.Time         `json:"sold_at,omitempty"`
}

// NewPlot creates a plot in available status
func NewPlot(plotNo string, projectID uuid.UUID, sizeMarla decimal.Decimal) (*Plot, error) {
	if plotNo == "" {
		return nil, shared.NewDomainError("VALIDATION", "plot number is required")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "project id is required")
	}
	if !sizeMarla.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "plot size must be positive")
	}

	return &Plot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PlotNo:            plotNo,
		ProjectID:         projectID,
		SizeMarla:         sizeMarla,
		Status:            PlotAvailable,
	}, nil
}

// WithSeller sets the seller owed a payout when the plot sells
func (p *Plot) WithSeller(sellerID uuid.UUID) *Plot {
	p.SellerID = &sellerID
	return p
}

// WithBookingAgent sets the agent who booked the plot
func (p *Plot) WithBookingAgent(agentID uuid.UUID) *Plot {
	p.BookedBy = &agentID
	return p
}

// Reserve holds the plot for a prospective buyer
func (p *Plot) Reserve() error {
	if p.Status != PlotAvailable {
		return shared.NewDomainError("INVALID_STATE",
			"only available plots can be reserved, current status: "+string(p.Status))
	}
	p.Status = PlotReserved
	p.Touch()
	return nil
}

// MarkSold records the sale on the plot. Only available or reserved plots
// can be sold.
func (p *Plot) MarkSold(buyerID uuid.UUID, salePrice valueobject.Money, soldAt time.Time) error {
	if !p.Status.IsSellable() {
		return shared.NewDomainError("INVALID_STATE",
			"plot in status "+string(p.Status)+" cannot be sold")
	}
	if buyerID == uuid.Nil {
		return shared.NewDomainError("VALIDATION", "buyer id is required")
	}
	if !salePrice.IsPositive() {
		return shared.NewDomainError("VALIDATION", "sale price must be positive")
	}
	if soldAt.IsZero() {
		soldAt = time.Now()
	}

	p.Status = PlotSold
	p.BuyerID = &buyerID
	p.SalePrice = &salePrice
	p.SoldAt = &soldAt
	p.Touch()

	p.AddDomainEvent(NewPlotSoldEvent(p))
	return nil
}

// RevertToAvailable undoes a sale, the compensating action when a sale
// workflow fails after the plot was flipped.
func (p *Plot) RevertToAvailable() error {
	if p.Status != PlotSold {
		return shared.NewDomainError("INVALID_STATE",
			"only sold plots can be reverted, current status: "+string(p.Status))
	}
	p.Status = PlotAvailable
	p.BuyerID = nil
	p.SalePrice = nil
	p.SoldAt = nil
	p.Touch()
	return nil
}

// Block takes the plot off the market
func (p *Plot) Block() error {
	if p.Status == PlotSold {
		return shared.NewDomainError("INVALID_STATE", "sold plots cannot be blocked")
	}
	p.Status = PlotBlocked
	p.Touch()
	return nil
}

// MarkDisputed flags the plot as under dispute
func (p *Plot) MarkDisputed() error {
	p.Status = PlotDisputed
	p.Touch()
	return nil
}

// Property domain events
const EventPlotSold = "property.plot_sold"

// PlotSoldEvent is raised when a plot is marked sold
type PlotSoldEvent struct {
	shared.BaseDomainEvent
	PlotNo    string    `json:"plot_no"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	SalePrice string    `json:"sale_price"`
}

// NewPlotSoldEvent creates a new plot sold event
func NewPlotSoldEvent(p *Plot) *PlotSoldEvent {
	return &PlotSoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPlotSold, "Plot", p.ID),
		PlotNo:          p.PlotNo,
		BuyerID:         *p.BuyerID,
		SalePrice:       p.SalePrice.Amount().String(),
	}
}
