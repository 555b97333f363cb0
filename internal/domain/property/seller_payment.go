package property

import (
	"github.com/google/uuid"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// SellerPaymentStatus is derived from paid amount versus owed amount,
// recomputed on every payment
type SellerPaymentStatus string

const (
	SellerPaymentPending SellerPaymentStatus = "pending"
	SellerPaymentPartial SellerPaymentStatus = "partial"
	SellerPaymentPaid    SellerPaymentStatus = "paid"
)

// SellerPayment tracks the payout owed to a plot's original seller after
// its sale.
type SellerPayment struct {
	shared.BaseAggregateRoot
	SellerID   uuid.UUID           `json:"seller_id"`
	PlotID     uuid.UUID           `json:"plot_id"`
	Amount     valueobject.Money   `json:"amount"`
	PaidAmount valueobject.Money   `json:"paid_amount"`
	Status     SellerPaymentStatus `json:"status"`
}

// NewSellerPayment creates a pending seller payment for the given amount
func NewSellerPayment(sellerID, plotID uuid.UUID, amount valueobject.Money) (*SellerPayment, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "seller id is required")
	}
	if plotID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "plot id is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "payment amount must be positive")
	}

	return &SellerPayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		PlotID:            plotID,
		Amount:            amount,
		PaidAmount:        valueobject.ZeroPKR(),
		Status:            SellerPaymentPending,
	}, nil
}

// deriveSellerPaymentStatus computes the status from the paid and owed
// amounts
func deriveSellerPaymentStatus(paid, owed valueobject.Money) SellerPaymentStatus {
	if paid.IsZero() {
		return SellerPaymentPending
	}
	done, _ := paid.GreaterThanOrEqual(owed)
	if done {
		return SellerPaymentPaid
	}
	return SellerPaymentPartial
}

// Remaining returns the amount still owed to the seller
func (s *SellerPayment) Remaining() valueobject.Money {
	return s.Amount.MustSubtract(s.PaidAmount)
}

// ApplyPayment records a payment toward the seller and rederives the
// status. Fully paid payouts accept no further payments.
func (s *SellerPayment) ApplyPayment(amount valueobject.Money) error {
	if s.Status == SellerPaymentPaid {
		return shared.ErrAlreadyPaid
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION", "payment amount must be positive")
	}
	if exceeds, _ := amount.GreaterThan(s.Remaining()); exceeds {
		return shared.NewDomainError("VALIDATION", "payment exceeds remaining amount")
	}

	s.PaidAmount = s.PaidAmount.MustAdd(amount)
	s.Status = deriveSellerPaymentStatus(s.PaidAmount, s.Amount)
	s.Touch()
	return nil
}
