package installment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// DerivedState holds the plan fields that are computed, never stored as
// caller input.
type DerivedState struct {
	TotalPaid       valueobject.Money
	RemainingAmount valueobject.Money
	NextDueDate     *time.Time
	Completed       bool
}

// DeriveState computes the plan's derived fields from its installments and
// down payment. It is a pure function so the invariant
//
//	totalPaid == sum(paidAmount for paid installments) + downPayment if paid
//	remainingAmount == totalAmount - totalPaid
//
// holds in every reachable state. NextDueDate is the earliest unpaid
// installment due on or after now, nil when none qualifies. Completed is
// true when every installment and the down payment have been paid.
func DeriveState(p *Plan, now time.Time) DerivedState {
	totalPaid := decimal.Zero
	allPaid := true
	var nextDue *time.Time

	for _, inst := range p.Installments {
		if inst.Paid {
			totalPaid = totalPaid.Add(inst.PaidAmount)
			continue
		}
		allPaid = false
		if inst.DueDate.Before(now) {
			continue
		}
		if nextDue == nil || inst.DueDate.Before(*nextDue) {
			due := inst.DueDate
			nextDue = &due
		}
	}

	if p.DownPaymentPaid {
		totalPaid = totalPaid.Add(p.DownPayment.Amount())
	}

	paid := valueobject.NewMoneyPKR(totalPaid)
	return DerivedState{
		TotalPaid:       paid,
		RemainingAmount: p.TotalAmount.MustSubtract(paid),
		NextDueDate:     nextDue,
		Completed:       allPaid && p.DownPaymentPaid,
	}
}
