package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgingBucket is a day-range classification of how overdue an unpaid
// installment is.
type AgingBucket string

const (
	BucketCurrent AgingBucket = "0-30"
	BucketThirty  AgingBucket = "31-60"
	BucketSixty   AgingBucket = "61-90"
	BucketNinety  AgingBucket = "90+"
)

// BucketFor places a days-overdue count into its aging bucket
func BucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 30:
		return BucketCurrent
	case daysOverdue <= 60:
		return BucketThirty
	case daysOverdue <= 90:
		return BucketSixty
	default:
		return BucketNinety
	}
}

// DaysOverdue returns whole days elapsed since the due date, floored
func DaysOverdue(dueDate, now time.Time) int {
	return int(now.Sub(dueDate).Hours() / 24)
}

// OverdueItem is one overdue installment in an aging report
type OverdueItem struct {
	PlanID        uuid.UUID       `json:"plan_id"`
	BuyerID       uuid.UUID       `json:"buyer_id"`
	PlotID        uuid.UUID       `json:"plot_id"`
	InstallmentNo int             `json:"installment_no"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	DaysOverdue   int             `json:"days_overdue"`
	Bucket        AgingBucket     `json:"bucket"`
}

// AgingReport groups every overdue installment across the given plans into
// aging buckets, with per-bucket amount totals.
type AgingReport struct {
	Items  []OverdueItem                   `json:"items"`
	Totals map[AgingBucket]decimal.Decimal `json:"totals"`
	AsOf   time.Time                       `json:"as_of"`
}

// BuildAgingReport scans active plans for overdue installments as of now.
// Terminal plans are skipped, a cancelled plan has no receivables to age.
func BuildAgingReport(plans []*Plan, now time.Time) *AgingReport {
	report := &AgingReport{
		Items: make([]OverdueItem, 0),
		Totals: map[AgingBucket]decimal.Decimal{
			BucketCurrent: decimal.Zero,
			BucketThirty:  decimal.Zero,
			BucketSixty:   decimal.Zero,
			BucketNinety:  decimal.Zero,
		},
		AsOf: now,
	}

	for _, plan := range plans {
		if plan.Status.IsTerminal() {
			continue
		}
		for _, inst := range plan.OverdueInstallments(now) {
			days := DaysOverdue(inst.DueDate, now)
			bucket := BucketFor(days)
			report.Items = append(report.Items, OverdueItem{
				PlanID:        plan.ID,
				BuyerID:       plan.BuyerID,
				PlotID:        plan.PlotID,
				InstallmentNo: inst.InstallmentNo,
				DueDate:       inst.DueDate,
				Amount:        inst.Amount,
				DaysOverdue:   days,
				Bucket:        bucket,
			})
			report.Totals[bucket] = report.Totals[bucket].Add(inst.Amount)
		}
	}
	return report
}
