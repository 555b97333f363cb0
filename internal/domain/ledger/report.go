package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate/backend/internal/domain/shared/valueobject"
)

// ProfitLossReport breaks down income against costs over a set of entries.
// Gross profit is income minus seller payments; net profit further deducts
// expenses, commissions and partner profit distributions.
type ProfitLossReport struct {
	Income         valueobject.Money `json:"income"`
	Expenses       valueobject.Money `json:"expenses"`
	SellerPayments valueobject.Money `json:"seller_payments"`
	Commissions    valueobject.Money `json:"commissions"`
	PartnerProfits valueobject.Money `json:"partner_profits"`
	GrossProfit    valueobject.Money `json:"gross_profit"`
	NetProfit      valueobject.Money `json:"net_profit"`
	// Margin is net profit as a percentage of income, 2dp, zero when
	// there is no income.
	Margin decimal.Decimal `json:"margin"`
}

// ProfitLoss folds entries into a profit and loss report. When projectID
// is set only entries posted against that project count.
func ProfitLoss(entries []*LedgerEntry, projectID *uuid.UUID) ProfitLossReport {
	report := ProfitLossReport{
		Income:         valueobject.ZeroPKR(),
		Expenses:       valueobject.ZeroPKR(),
		SellerPayments: valueobject.ZeroPKR(),
		Commissions:    valueobject.ZeroPKR(),
		PartnerProfits: valueobject.ZeroPKR(),
	}

	for _, entry := range entries {
		if projectID != nil && (entry.ProjectID == nil || *entry.ProjectID != *projectID) {
			continue
		}

		switch {
		case entry.Type == EntryTypeCredit && entry.Account == AccountIncome && entry.Category == CategoryPlotSale:
			report.Income = report.Income.MustAdd(entry.Amount)
		case entry.Type == EntryTypeDebit && entry.Account == AccountExpense:
			report.Expenses = report.Expenses.MustAdd(entry.Amount)
		case entry.Type == EntryTypeDebit && entry.Account == AccountAgentCommission && entry.Category == CategoryCommission:
			report.Commissions = report.Commissions.MustAdd(entry.Amount)
		case entry.Type == EntryTypeDebit && entry.Account == AccountSeller && entry.Category == CategorySellerPayment:
			report.SellerPayments = report.SellerPayments.MustAdd(entry.Amount)
		case entry.Type == EntryTypeDebit && entry.Account == AccountPartner && entry.Category == CategoryPartnerProfit:
			report.PartnerProfits = report.PartnerProfits.MustAdd(entry.Amount)
		}
	}

	report.GrossProfit = report.Income.MustSubtract(report.SellerPayments)
	report.NetProfit = report.GrossProfit.
		MustSubtract(report.Expenses).
		MustSubtract(report.Commissions).
		MustSubtract(report.PartnerProfits)

	if report.Income.IsPositive() {
		report.Margin = report.NetProfit.Amount().
			Div(report.Income.Amount()).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return report
}

// CashFlowGroupBy selects the period granularity of a cash flow report
type CashFlowGroupBy string

const (
	CashFlowByDay   CashFlowGroupBy = "day"
	CashFlowByWeek  CashFlowGroupBy = "week"
	CashFlowByMonth CashFlowGroupBy = "month"
)

// IsValid checks if the grouping is valid
func (g CashFlowGroupBy) IsValid() bool {
	return g == CashFlowByDay || g == CashFlowByWeek || g == CashFlowByMonth
}

// CashFlowPeriod is one bucket of a cash flow report
type CashFlowPeriod struct {
	Period   string            `json:"period"`
	Inflows  valueobject.Money `json:"inflows"`
	Outflows valueobject.Money `json:"outflows"`
	Net      valueobject.Money `json:"net"`
}

// CashFlowReport groups cash movement into periods plus overall totals
type CashFlowReport struct {
	Periods       []CashFlowPeriod  `json:"periods"`
	TotalInflows  valueobject.Money `json:"total_inflows"`
	TotalOutflows valueobject.Money `json:"total_outflows"`
	Net           valueobject.Money `json:"net"`
}

var (
	cashInflowAccounts  = map[Account]bool{AccountIncome: true, AccountBuyer: true}
	cashOutflowAccounts = map[Account]bool{
		AccountSeller:          true,
		AccountAgentCommission: true,
		AccountPartner:         true,
		AccountExpense:         true,
	}
)

// CashFlow folds entries into inflow/outflow buckets per period. Credits
// against income or buyer accounts count as inflows; debits against
// seller, agent-commission, partner or expense accounts count as
// outflows. Everything else is ignored.
func CashFlow(entries []*LedgerEntry, groupBy CashFlowGroupBy) CashFlowReport {
	report := CashFlowReport{
		TotalInflows:  valueobject.ZeroPKR(),
		TotalOutflows: valueobject.ZeroPKR(),
	}

	buckets := make(map[string]*CashFlowPeriod)
	for _, entry := range entries {
		inflow := entry.Type == EntryTypeCredit && cashInflowAccounts[entry.Account]
		outflow := entry.Type == EntryTypeDebit && cashOutflowAccounts[entry.Account]
		if !inflow && !outflow {
			continue
		}

		key := periodKey(entry, groupBy)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &CashFlowPeriod{
				Period:   key,
				Inflows:  valueobject.ZeroPKR(),
				Outflows: valueobject.ZeroPKR(),
			}
			buckets[key] = bucket
		}

		if inflow {
			bucket.Inflows = bucket.Inflows.MustAdd(entry.Amount)
			report.TotalInflows = report.TotalInflows.MustAdd(entry.Amount)
		} else {
			bucket.Outflows = bucket.Outflows.MustAdd(entry.Amount)
			report.TotalOutflows = report.TotalOutflows.MustAdd(entry.Amount)
		}
	}

	report.Periods = make([]CashFlowPeriod, 0, len(buckets))
	for _, bucket := range buckets {
		bucket.Net = bucket.Inflows.MustSubtract(bucket.Outflows)
		report.Periods = append(report.Periods, *bucket)
	}
	sort.Slice(report.Periods, func(i, j int) bool {
		return report.Periods[i].Period < report.Periods[j].Period
	})

	report.Net = report.TotalInflows.MustSubtract(report.TotalOutflows)
	return report
}

func periodKey(entry *LedgerEntry, groupBy CashFlowGroupBy) string {
	date := entry.EntryDate
	switch groupBy {
	case CashFlowByWeek:
		// Week-of-month keyed the same way the bookkeeping sheets were.
		week := (date.Day()-1)/7 + 1
		return fmt.Sprintf("%04d-%02d-W%d", date.Year(), int(date.Month()), week)
	case CashFlowByDay:
		return date.Format("2006-01-02")
	default:
		return date.Format("2006-01")
	}
}
